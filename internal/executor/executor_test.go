// Copyright 2026 The nutsdb Author. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package executor_test

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/cursor"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/executor"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/planner"
	"github.com/nutsdb/nutsquery/internal/store"
	"github.com/nutsdb/nutsquery/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seeded = 80

type fixture struct {
	table   *catalog.Table
	planner *planner.Planner
	store   *store.Store
	router  *executor.Router
}

func newFixture(t *testing.T) *fixture {
	cat, table := testutils.UsersCatalog(t)
	st := store.New()
	require.NoError(t, st.CreateTable(table))
	testutils.SeedUsers(t, st, table, seeded)
	return &fixture{
		table:   table,
		planner: planner.New(cat, planner.Options{}),
		store:   st,
		router:  executor.NewRouter(),
	}
}

// paginate runs q to exhaustion, planning afresh for every page.
func (f *fixture) paginate(t *testing.T, q planner.Query) ([]int64, access.Kind) {
	view, err := f.store.View()
	require.NoError(t, err)

	var (
		ids    []int64
		kind   access.Kind
		anchor *cursor.Anchor
	)
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10*seeded, "pagination does not terminate")

		plan, err := f.planner.Plan(q)
		require.NoError(t, err)
		kind = plan.Path.Kind()

		page, err := f.router.Execute(context.Background(), view, plan, anchor)
		require.NoError(t, err)
		require.Equal(t, kind, page.Path)
		require.LessOrEqual(t, len(page.Rows), plan.Limit)

		for _, row := range page.Rows {
			ids = append(ids, pkOf(t, row.PK))
		}
		if page.Next == nil {
			return ids, kind
		}
		require.NotEmpty(t, page.Rows)
		anchor, _, err = cursor.Validate(page.Next, plan)
		require.NoError(t, err)
	}
}

func pkOf(t *testing.T, raw []byte) int64 {
	v, err := codec.Decode(raw)
	require.NoError(t, err)
	return v.AsInt()
}

func field(rec map[string]codec.Value, name string) codec.Value {
	if v, ok := rec[name]; ok {
		return v
	}
	return codec.Null()
}

// expected returns the seeded ids keep accepts, ordered by the sort key
// made of sortFields followed by the primary key.
func expected(keep func(rec map[string]codec.Value) bool, sortFields []string, dir keyrange.Direction) []int64 {
	type entry struct {
		key []byte
		id  int64
	}
	var entries []entry
	for id := int64(1); id <= seeded; id++ {
		rec := testutils.SeedUser(id)
		if !keep(rec) {
			continue
		}
		vals := make([]codec.Value, 0, len(sortFields)+1)
		for _, f := range sortFields {
			vals = append(vals, field(rec, f))
		}
		vals = append(vals, codec.Int(id))
		entries = append(entries, entry{key: codec.EncodeTuple(vals...), id: id})
	}
	sort.Slice(entries, func(i, j int) bool {
		c := bytes.Compare(entries[i].key, entries[j].key)
		if dir == keyrange.Backward {
			return c > 0
		}
		return c < 0
	})
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

func intIn(v codec.Value, lo, hi int64) bool {
	return !v.IsNull() && v.AsInt() >= lo && v.AsInt() < hi
}

func TestRouter_PagesEveryPath(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		where  planner.Predicate
		order  string
		kind   access.Kind
		keep   func(rec map[string]codec.Value) bool
		sortBy []string
	}{
		{
			name:  "pk point",
			where: planner.Where(planner.Eq("id", codec.Int(7))),
			kind:  access.KindPKPoint,
			keep:  func(rec map[string]codec.Value) bool { return rec["id"].AsInt() == 7 },
		},
		{
			name:  "pk range with residual",
			where: planner.Where(planner.Gt("id", codec.Int(10)), planner.Le("id", codec.Int(60)), planner.Ge("age", codec.Int(30))),
			kind:  access.KindPKRange,
			keep: func(rec map[string]codec.Value) bool {
				id := rec["id"].AsInt()
				return id > 10 && id <= 60 && intIn(rec["age"], 30, 1<<31)
			},
		},
		{
			name:   "index point",
			where:  planner.Where(planner.Eq("age", codec.Int(30))),
			kind:   access.KindIndexPoint,
			keep:   func(rec map[string]codec.Value) bool { return intIn(rec["age"], 30, 31) },
			sortBy: []string{"age"},
		},
		{
			name:   "index range",
			where:  planner.Where(planner.Ge("age", codec.Int(25)), planner.Lt("age", codec.Int(35))),
			kind:   access.KindIndexRange,
			keep:   func(rec map[string]codec.Value) bool { return intIn(rec["age"], 25, 35) },
			sortBy: []string{"age"},
		},
		{
			name:   "index prefix on leading equality",
			where:  planner.Where(planner.Eq("name", codec.String("ann"))),
			kind:   access.KindIndexPrefix,
			keep:   func(rec map[string]codec.Value) bool { return rec["name"].AsString() == "ann" },
			sortBy: []string{"name", "age"},
		},
		{
			name:  "composite in list",
			where: planner.In("id", codec.Int(3), codec.Int(9), codec.Int(70), codec.Int(200)),
			kind:  access.KindComposite,
			keep: func(rec map[string]codec.Value) bool {
				id := rec["id"].AsInt()
				return id == 3 || id == 9 || id == 70
			},
		},
		{
			name: "composite union of index and pk branches",
			where: planner.AnyOf(
				planner.Where(planner.Eq("age", codec.Int(30))),
				planner.Where(planner.Eq("id", codec.Int(5))),
				planner.Where(planner.Eq("id", codec.Int(12))),
			),
			kind: access.KindComposite,
			keep: func(rec map[string]codec.Value) bool {
				id := rec["id"].AsInt()
				return intIn(rec["age"], 30, 31) || id == 5 || id == 12
			},
		},
		{
			name: "composite intersection within a branch",
			where: planner.AnyOf(
				planner.Where(planner.Eq("age", codec.Int(30)), planner.Eq("name", codec.String("fay"))),
				planner.Where(planner.Eq("id", codec.Int(1))),
			),
			kind: access.KindComposite,
			keep: func(rec map[string]codec.Value) bool {
				return rec["id"].AsInt() == 1 || (intIn(rec["age"], 30, 31) && rec["name"].AsString() == "fay")
			},
		},
		{
			name:  "full scan on an unindexed field",
			where: planner.Where(planner.Eq("city", codec.String("city-1"))),
			kind:  access.KindFullScan,
			keep: func(rec map[string]codec.Value) bool {
				c := field(rec, "city")
				return !c.IsNull() && c.AsString() == "city-1"
			},
		},
		{
			name:   "order by an indexed field",
			order:  "age",
			kind:   access.KindIndexRange,
			keep:   func(map[string]codec.Value) bool { return true },
			sortBy: []string{"age"},
		},
	}

	for _, tt := range tests {
		for _, dir := range []keyrange.Direction{keyrange.Forward, keyrange.Backward} {
			for _, limit := range []int{1, 3, 7, 100} {
				for _, offset := range []int{0, 2} {
					name := fmt.Sprintf("%s/%s/limit=%d/offset=%d", tt.name, dir, limit, offset)
					t.Run(name, func(t *testing.T) {
						want := expected(tt.keep, tt.sortBy, dir)
						if offset < len(want) {
							want = want[offset:]
						} else {
							want = nil
						}

						got, kind := f.paginate(t, planner.Query{
							Table:     "users",
							Where:     tt.where,
							OrderBy:   tt.order,
							Direction: dir,
							Offset:    offset,
							Limit:     limit,
						})
						require.Equal(t, tt.kind, kind)
						assert.Equal(t, want, got)
					})
				}
			}
		}
	}
}

func TestRouter_OffsetAppliesOnce(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)

	plan, err := f.planner.Plan(planner.Query{Table: "users", Offset: 5, Limit: 10})
	require.NoError(t, err)

	first, err := f.router.Execute(context.Background(), view, plan, nil)
	require.NoError(t, err)
	require.Len(t, first.Rows, 10)
	assert.Equal(t, int64(6), pkOf(t, first.Rows[0].PK))
	assert.Equal(t, int64(15), pkOf(t, first.Rows[9].PK))

	anchor, _, err := cursor.Validate(first.Next, plan)
	require.NoError(t, err)
	second, err := f.router.Execute(context.Background(), view, plan, anchor)
	require.NoError(t, err)
	require.Len(t, second.Rows, 10)
	assert.Equal(t, int64(16), pkOf(t, second.Rows[0].PK))
	assert.Equal(t, int64(25), pkOf(t, second.Rows[9].PK))
}

func TestRouter_ResumesPastDeletedAnchor(t *testing.T) {
	f := newFixture(t)
	q := planner.Query{Table: "users", Where: planner.Where(planner.Gt("id", codec.Int(10))), Limit: 5}

	view, err := f.store.View()
	require.NoError(t, err)
	plan, err := f.planner.Plan(q)
	require.NoError(t, err)
	first, err := f.router.Execute(context.Background(), view, plan, nil)
	require.NoError(t, err)
	require.Equal(t, int64(15), pkOf(t, first.Rows[4].PK))

	for _, id := range []int64{15, 16} {
		deleted, err := f.store.DeleteRow(f.table, codec.Int(id))
		require.NoError(t, err)
		require.True(t, deleted)
	}

	view, err = f.store.View()
	require.NoError(t, err)
	plan, err = f.planner.Plan(q)
	require.NoError(t, err)
	anchor, _, err := cursor.Validate(first.Next, plan)
	require.NoError(t, err)

	second, err := f.router.Execute(context.Background(), view, plan, anchor)
	require.NoError(t, err)
	require.NotEmpty(t, second.Rows)
	assert.Equal(t, int64(17), pkOf(t, second.Rows[0].PK))
}

func TestRouter_StopsAtBudget(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)

	plan, err := f.planner.Plan(planner.Query{Table: "users", Where: planner.Where(planner.Gt("id", codec.Int(0))), Limit: 3})
	require.NoError(t, err)

	page, err := f.router.Execute(context.Background(), view, plan, nil)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 3)
	assert.NotNil(t, page.Next)
	assert.LessOrEqual(t, page.Scanned, 4)
}

func TestRouter_ExhaustedScanHasNoToken(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)

	plan, err := f.planner.Plan(planner.Query{Table: "users", Where: planner.Where(planner.Gt("id", codec.Int(seeded-3))), Limit: 3})
	require.NoError(t, err)

	page, err := f.router.Execute(context.Background(), view, plan, nil)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 3)
	assert.Nil(t, page.Next)
}

func TestRouter_Cancelled(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)
	plan, err := f.planner.Plan(planner.Query{Table: "users"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.router.Execute(ctx, view, plan, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_DropsAnchorRow(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)

	tests := []struct {
		name  string
		where planner.Predicate
		exec  executor.Executor
	}{
		{"pk range", planner.Where(planner.Gt("id", codec.Int(10))), executor.PKRangeExecutor{}},
		{"composite", planner.In("id", codec.Int(11), codec.Int(12)), executor.CompositeExecutor{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := f.planner.Plan(planner.Query{Table: "users", Where: tt.where})
			require.NoError(t, err)

			// the envelope is deliberately not rewritten past the anchor
			anchor := codec.Encode(codec.Int(11))
			it, err := tt.exec.Open(view, plan.Path, envelope.Compute(plan), anchor, 1)
			require.NoError(t, err)
			defer it.Close()

			require.True(t, it.Next())
			assert.Equal(t, int64(12), pkOf(t, it.Row().PK))
			assert.False(t, it.Next())
			require.NoError(t, it.Err())
		})
	}
}

func TestExecutor_PKPointMissingRow(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)

	plan, err := f.planner.Plan(planner.Query{Table: "users", Where: planner.Where(planner.Eq("id", codec.Int(seeded+1)))})
	require.NoError(t, err)

	page, err := f.router.Execute(context.Background(), view, plan, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Nil(t, page.Next)
}

func TestExecutor_StorageErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	view, err := f.store.View()
	require.NoError(t, err)

	path := access.PKRange{Primary: "missing.primary"}
	_, err = executor.PKRangeExecutor{}.Open(view, path, envelope.Envelope{Range: keyrange.All()}, nil, 1)
	require.ErrorIs(t, err, store.ErrIndexNotFound)
}
