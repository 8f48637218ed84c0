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

// Package planner chooses an access path for a query and builds the plan
// that executes it. It is the semantic side of the query path: it reads
// typed values and hands the executor nothing but bytes.
package planner

import (
	"sort"
	"strings"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/boundary"
	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/tuple"
	"github.com/nutsdb/nutsquery/internal/utils"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownTable is returned when a query names a table the catalog lacks.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownField is returned when a condition or ordering names an unknown field.
	ErrUnknownField = errors.New("unknown field")

	// ErrKindMismatch is returned when a value cannot be compared with its field.
	ErrKindMismatch = errors.New("value kind not assignable to field")

	// ErrUnsupportedOp is returned when a condition carries an unknown operator.
	ErrUnsupportedOp = errors.New("unsupported operator")

	// ErrInvalidWindow is returned for a negative offset or limit, or an unknown direction.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrOrderNotIndexed is returned when the requested ordering needs an index the table lacks.
	ErrOrderNotIndexed = errors.New("required index absent with no fallback permitted by policy")
)

const (
	DefaultLimit = 100
	MaxLimit     = 10000
)

// Options configures a Planner.
type Options struct {
	// DefaultLimit replaces a zero limit.
	DefaultLimit int

	// MaxLimit caps every limit.
	MaxLimit int

	Logger utils.ILogger
}

// Planner builds plans against a catalog. It is safe for concurrent use.
type Planner struct {
	catalog catalog.Catalog
	opts    Options
}

func New(cat catalog.Catalog, opts Options) *Planner {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	return &Planner{catalog: cat, opts: opts}
}

// cond is a Condition resolved against a table, its value coerced to the
// field kind.
type cond struct {
	field catalog.Field
	slot  int
	op    Op
	value codec.Value
}

func (c cond) boundary() boundary.Cond {
	return boundary.Cond{Op: c.op, Value: c.value}
}

func (c cond) isRange() bool {
	switch c.op {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// shape renders c without its value.
func (c cond) shape() string {
	kind := "null"
	if !c.value.IsNull() {
		kind = c.value.Kind().String()
	}
	return c.field.Name + " " + c.op.String() + " " + kind
}

// ordering is a resolved OrderBy.
type ordering struct {
	field string
	pk    bool
}

func (o ordering) none() bool { return o.field == "" }

// pkOrdered reports whether primary key order satisfies o.
func (o ordering) pkOrdered() bool { return o.none() || o.pk }

// Plan builds the plan for q. Identical input yields an identical plan.
func (p *Planner) Plan(q Query) (*access.Plan, error) {
	table, err := p.catalog.Table(q.Table)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownTable, "%q", q.Table)
	}

	if q.Offset < 0 || q.Limit < 0 {
		return nil, errors.Wrapf(ErrInvalidWindow, "offset %d limit %d", q.Offset, q.Limit)
	}
	if !q.Direction.Valid() {
		return nil, errors.Wrapf(ErrInvalidWindow, "direction %v", q.Direction)
	}
	limit := q.Limit
	if limit == 0 {
		limit = p.opts.DefaultLimit
	}
	if limit > p.opts.MaxLimit {
		limit = p.opts.MaxLimit
	}

	branches, err := resolve(table, q.Where)
	if err != nil {
		return nil, err
	}
	order, err := resolveOrder(table, q.OrderBy)
	if err != nil {
		return nil, err
	}

	s := &selector{table: table, order: order}
	plan, err := s.choose(branches)
	if err != nil {
		return nil, err
	}
	plan.Table = table.Name
	plan.Direction = q.Direction
	plan.Offset = q.Offset
	plan.Limit = limit
	plan.Signature = signature(plan.Path, branches, order)
	return plan, nil
}

// Stable reports whether inbound, the signature carried by a client token,
// matches plan. A mismatch is logged. The plan is never rebound to it.
func (p *Planner) Stable(plan *access.Plan, inbound access.Signature) bool {
	if inbound == plan.Signature {
		return true
	}
	p.opts.Logger.Printf("signature of %s plan on %s is %s, token carries %s",
		plan.Path.Kind(), plan.SortIndex(), plan.Signature, inbound)
	return false
}

func resolve(t *catalog.Table, pred Predicate) ([][]cond, error) {
	pred = pred.normalized()
	if pred.MatchesAll() {
		return [][]cond{{}}, nil
	}
	out := make([][]cond, 0, len(pred.Branches))
	for _, branch := range pred.Branches {
		conds := make([]cond, 0, len(branch))
		for _, c := range branch {
			rc, err := resolveCond(t, c)
			if err != nil {
				return nil, err
			}
			conds = append(conds, rc)
		}
		out = append(out, conds)
	}
	return out, nil
}

func resolveCond(t *catalog.Table, c Condition) (cond, error) {
	f, slot, ok := t.Field(c.Field)
	if !ok {
		return cond{}, errors.Wrapf(ErrUnknownField, "%s.%s", t.Name, c.Field)
	}
	if c.Op > OpPrefix {
		return cond{}, errors.Wrapf(ErrUnsupportedOp, "%v on %s", c.Op, c.Field)
	}
	rc := cond{field: f, slot: slot, op: c.Op}

	if c.Value.IsNull() {
		if c.Op != OpEq || !f.Nullable {
			return cond{}, errors.Wrapf(ErrKindMismatch, "null %s on %s field %s", c.Op, f.Kind, f.Name)
		}
		rc.value = c.Value
		return rc, nil
	}
	if c.Op == OpPrefix && f.Kind != tuple.KindString && f.Kind != tuple.KindBytes {
		return cond{}, errors.Wrapf(ErrKindMismatch, "prefix on %s field %s", f.Kind, f.Name)
	}
	v, err := codec.Coerce(c.Value, f.Kind)
	if err != nil {
		return cond{}, errors.Wrapf(ErrKindMismatch, "%s value for %s field %s", c.Value.Kind(), f.Kind, f.Name)
	}
	rc.value = v
	return rc, nil
}

func resolveOrder(t *catalog.Table, orderBy string) (ordering, error) {
	if orderBy == "" {
		return ordering{}, nil
	}
	if orderBy == t.PrimaryKey {
		return ordering{field: orderBy, pk: true}, nil
	}
	if _, _, ok := t.Field(orderBy); !ok {
		return ordering{}, errors.Wrapf(ErrUnknownField, "order by %s.%s", t.Name, orderBy)
	}
	for _, idx := range t.Indexes {
		if idx.Fields[0] == orderBy {
			return ordering{field: orderBy}, nil
		}
	}
	return ordering{}, errors.Wrapf(ErrOrderNotIndexed, "order by %s.%s", t.Name, orderBy)
}

// signature fingerprints the path variant, its sort index, the predicate
// shape and the ordering. Conditions and branches are sorted so that
// reordering a predicate keeps its signature.
func signature(path access.Path, branches [][]cond, order ordering) access.Signature {
	parts := make([]string, len(branches))
	for i, b := range branches {
		conds := make([]string, len(b))
		for j, c := range b {
			conds[j] = c.shape()
		}
		sort.Strings(conds)
		parts[i] = strings.Join(conds, ",")
	}
	sort.Strings(parts)

	return access.NewSignatureBuilder(path.Kind()).
		Add(path.SortIndex()).
		Add(strings.Join(parts, "|")).
		Add(order.field).
		Sum()
}
