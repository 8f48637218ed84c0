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

package nutsquery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/cursor"
	"github.com/nutsdb/nutsquery/internal/executor"
	"github.com/nutsdb/nutsquery/internal/metrics"
	"github.com/nutsdb/nutsquery/internal/planner"
	"github.com/nutsdb/nutsquery/internal/store"
	"github.com/nutsdb/nutsquery/internal/utils"
)

var tokenEncoding = base64.RawURLEncoding

// Row is one decoded result row.
type Row struct {
	table  *catalog.Table
	Values []Value
}

// Get returns the value of field, or false when the table has no such field.
func (r Row) Get(field string) (Value, bool) {
	_, slot, ok := r.table.Field(field)
	if !ok {
		return Value{}, false
	}
	return r.Values[slot], true
}

// Record returns the row keyed by field name. Null fields are included.
func (r Row) Record() map[string]Value {
	rec := make(map[string]Value, len(r.Values))
	for i, f := range r.table.Fields {
		rec[f.Name] = r.Values[i]
	}
	return rec
}

// Result is one page of a query.
type Result struct {
	// QueryID identifies the call in logs.
	QueryID snowflake.ID
	Rows    []Row

	// Next is the continuation token, empty when there are no more rows.
	Next string

	// Path names the access path that served the page.
	Path    string
	Scanned int
}

// HasMore reports whether Next resumes the query.
func (r *Result) HasMore() bool {
	return r.Next != ""
}

// Engine plans and executes queries over a store. Engines keep no state
// between calls beyond their configuration; it is safe for concurrent use.
type Engine struct {
	opts    Options
	catalog catalog.Catalog
	store   *store.Store
	planner *planner.Planner
	router  *executor.Router
	metrics *metrics.Metrics
	node    *snowflake.Node
	logger  ILogger
}

// Open returns an Engine over st. Every table the catalog lists gets its
// indexes created in st.
func Open(cat Catalog, st *Store, ops ...Option) (*Engine, error) {
	opts := DefaultOptions
	for _, do := range ops {
		do(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}

	node, err := snowflake.NewNode(opts.NodeNum)
	if err != nil {
		return nil, err
	}

	if lister, ok := cat.(interface{ Tables() []string }); ok {
		for _, name := range lister.Tables() {
			t, err := cat.Table(name)
			if err != nil {
				return nil, err
			}
			if err := st.CreateTable(t); err != nil {
				return nil, err
			}
		}
	}

	return &Engine{
		opts:    opts,
		catalog: cat,
		store:   st,
		planner: planner.New(cat, planner.Options{
			DefaultLimit: opts.DefaultLimit,
			MaxLimit:     opts.MaxLimit,
			Logger:       utils.PrefixLogger(opts.Logger, "nutsquery: planner: "),
		}),
		router:  executor.NewRouter(),
		metrics: metrics.New(opts.Registerer),
		node:    node,
		logger:  opts.Logger,
	}, nil
}

// Query returns one page of q. An empty token starts at q.Offset; any
// other token must come from the Next of an earlier page of the same
// query. A rejected token fails with an error for which IsContinuation is
// true.
func (e *Engine) Query(ctx context.Context, q Query, token string) (*Result, error) {
	start := time.Now()
	id := e.node.Generate()

	plan, err := e.planner.Plan(q)
	if err != nil {
		e.metrics.PlanningFailed(planningReason(err))
		return nil, err
	}

	var anchor *cursor.Anchor
	if token != "" {
		raw, err := tokenEncoding.DecodeString(token)
		if err != nil {
			err = &cursor.Error{Kind: cursor.RejectMalformed, State: cursor.StateReceived, Err: err}
			e.reject(id, cursor.StateReceived.String(), err)
			return nil, err
		}
		if t, err := cursor.Decode(raw); err == nil && t.Version == cursor.Version {
			e.planner.Stable(plan, t.Signature)
		}
		var trace *cursor.Trace
		anchor, trace, err = cursor.Validate(raw, plan)
		if err != nil {
			e.reject(id, trace.String(), err)
			return nil, err
		}
	}

	view, err := e.store.View()
	if err != nil {
		return nil, err
	}
	page, err := e.router.Execute(ctx, view, plan, anchor)
	if err != nil {
		return nil, err
	}

	table, err := e.catalog.Table(plan.Table)
	if err != nil {
		return nil, err
	}
	res := &Result{
		QueryID: id,
		Rows:    make([]Row, 0, len(page.Rows)),
		Path:    page.Path.String(),
		Scanned: page.Scanned,
	}
	for _, r := range page.Rows {
		values, err := codec.DecodeTuple(r.Value)
		if err != nil {
			return nil, fmt.Errorf("nutsquery: row %x: %w", r.PK, err)
		}
		res.Rows = append(res.Rows, Row{table: table, Values: values})
	}
	if page.Next != nil {
		res.Next = tokenEncoding.EncodeToString(page.Next)
	}

	e.metrics.ObserveQuery(res.Path, page.Scanned, len(res.Rows), time.Since(start))
	return res, nil
}

func (e *Engine) reject(id snowflake.ID, trace string, err error) {
	e.logger.Printf("nutsquery: query %s: token rejected (%s): %v", id, trace, err)
	var te *cursor.Error
	if errors.As(err, &te) {
		e.metrics.TokenRejected(te.Kind.String())
	}
}

// Explain describes the plan q would run with.
func (e *Engine) Explain(q Query) (string, error) {
	plan, err := e.planner.Plan(q)
	if err != nil {
		return "", err
	}
	return e.planner.Explain(plan), nil
}

// Insert stores record in table, replacing the row with the same primary key.
func (e *Engine) Insert(table string, record map[string]Value) error {
	t, err := e.catalog.Table(table)
	if err != nil {
		return err
	}
	return e.store.Insert(t, record)
}

// Delete removes the row of table with primary key pk.
func (e *Engine) Delete(table string, pk Value) (bool, error) {
	t, err := e.catalog.Table(table)
	if err != nil {
		return false, err
	}
	return e.store.DeleteRow(t, pk)
}

// Store returns the store the engine reads.
func (e *Engine) Store() *Store {
	return e.store
}
