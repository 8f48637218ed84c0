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

package executor

import (
	"context"
	"fmt"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/cursor"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/kv"
)

// Page is one page of query output.
type Page struct {
	Rows []Row

	// Next resumes after the last row of Rows. It is nil when the scan
	// is exhausted.
	Next []byte

	// Scanned is the number of store entries read to build the page.
	Scanned int
	Path    access.Kind
}

// Router dispatches plans to the executor registered for their path.
type Router struct {
	executors map[access.Kind]Executor
}

// DefaultExecutors returns one executor per path variant.
func DefaultExecutors() []Executor {
	return []Executor{
		PKPointExecutor{},
		PKRangeExecutor{},
		IndexPointExecutor{},
		IndexRangeExecutor{},
		IndexPrefixExecutor{},
		CompositeExecutor{},
		FullScanExecutor{},
	}
}

// NewRouter returns a router over executors, or over DefaultExecutors
// when none are given.
func NewRouter(executors ...Executor) *Router {
	if len(executors) == 0 {
		executors = DefaultExecutors()
	}
	r := &Router{executors: make(map[access.Kind]Executor, len(executors))}
	for _, e := range executors {
		r.Register(e)
	}
	return r
}

// Register binds e to its path variant, replacing any previous executor.
func (r *Router) Register(e Executor) {
	r.executors[e.Kind()] = e
}

// Execute runs plan against src. With an anchor the plan's offset is not
// applied and the scan resumes strictly after the anchor. The router reads
// one row past the page to decide whether a continuation token is due.
func (r *Router) Execute(ctx context.Context, src kv.Source, plan *access.Plan, anchor *cursor.Anchor) (*Page, error) {
	kind := plan.Path.Kind()
	exec, ok := r.executors[kind]
	if !ok {
		panic(fmt.Sprintf("executor: no executor for %s", kind))
	}
	if exec.Kind() != kind {
		panic(fmt.Sprintf("executor: %s registered for %s", exec.Kind(), kind))
	}
	if plan.Limit <= 0 {
		panic(fmt.Sprintf("executor: plan limit %d", plan.Limit))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := plan.Offset
	env := envelope.Compute(plan)
	var anchorKey []byte
	if anchor != nil {
		offset = 0
		anchorKey = anchor.Key
		var err error
		if env, err = env.Rewrite(anchorKey); err != nil {
			return nil, err
		}
	}

	it, err := exec.Open(src, plan.Path, env, anchorKey, offset+plan.Limit+1)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	page := &Page{Path: kind, Rows: make([]Row, 0, plan.Limit)}
	more := false
	skipped := 0
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(page.Rows) == plan.Limit {
			more = true
			break
		}
		page.Rows = append(page.Rows, copyRow(it.Row()))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	page.Scanned = it.Scanned()

	if more {
		last := page.Rows[len(page.Rows)-1]
		token, err := cursor.NewToken(plan, last.Key)
		if err != nil {
			return nil, err
		}
		page.Next = token.Encode()
	}
	return page, nil
}

func copyRow(r Row) Row {
	return Row{
		Key:   append([]byte(nil), r.Key...),
		PK:    append([]byte(nil), r.PK...),
		Value: append([]byte(nil), r.Value...),
	}
}
