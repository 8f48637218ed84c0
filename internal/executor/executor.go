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

// Package executor runs access paths against an ordered store. Executors
// see raw bytes only: a path, an envelope and an anchor key. The Router
// picks the executor for a plan and assembles the page.
package executor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/kv"
)

// ErrDanglingEntry is returned when an index entry names a primary key
// that the primary index does not hold.
var ErrDanglingEntry = errors.New("index entry without row")

// Row is one row produced by an executor.
type Row struct {
	// Key is the sort key of the row in the plan's sort index.
	Key []byte
	// PK is the encoded primary key.
	PK []byte
	// Value is the encoded row.
	Value []byte
}

// RowIterator is a pull-based sequence of rows.
//
//	for it.Next() {
//		row := it.Row()
//	}
//	if err := it.Err(); err != nil { ... }
type RowIterator interface {
	Next() bool
	Row() Row
	Err() error
	Close()

	// Scanned returns the number of store entries read so far.
	Scanned() int
}

// Executor runs one access path variant. Open returns rows of path that lie
// strictly inside env, in env.Direction order, never the row whose sort key
// equals anchor, and at most budget of them. A budget <= 0 yields nothing.
type Executor interface {
	Kind() access.Kind
	Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error)
}

func mustResolved(env envelope.Envelope) {
	if !env.Range.Resolved() {
		panic(fmt.Sprintf("executor: unresolved envelope %s", env))
	}
	if !env.Direction.Valid() {
		panic(fmt.Sprintf("executor: invalid direction %d", env.Direction))
	}
}

func mismatch(want access.Kind, path access.Path) string {
	return fmt.Sprintf("executor: %s executor dispatched a %s path", want, path.Kind())
}

func accept(m keyrange.Matcher, row []byte) (bool, error) {
	if m == nil {
		return true, nil
	}
	return m.Match(row)
}

// rowFunc turns an entry of the scanned index into a row. skip reports an
// entry the residual rejected.
type rowFunc func(key, value []byte) (row Row, skip bool, err error)

// rangeIterator walks one index inside an envelope and maps every entry
// through fn.
type rangeIterator struct {
	sc     *scanner
	fn     rowFunc
	anchor []byte
	budget int

	row     Row
	err     error
	done    bool
	scanned int
}

func newRangeIterator(src kv.Source, index string, env envelope.Envelope, anchor []byte, budget int, fn rowFunc) (RowIterator, error) {
	it := &rangeIterator{fn: fn, anchor: anchor, budget: budget}
	if budget <= 0 || env.Range.Empty() {
		it.done = true
		return it, nil
	}
	sc, err := newScanner(src, index, env)
	if err != nil {
		return nil, err
	}
	it.sc = sc
	return it, nil
}

func (it *rangeIterator) Next() bool {
	if it.done {
		return false
	}
	for {
		key, value, ok := it.sc.next()
		if !ok {
			it.finish()
			return false
		}
		if it.anchor != nil && bytes.Equal(key, it.anchor) {
			continue
		}
		row, skip, err := it.fn(key, value)
		if err != nil {
			it.err = err
			it.finish()
			return false
		}
		if skip {
			continue
		}
		it.row = row
		if it.budget--; it.budget == 0 {
			it.finish()
		}
		return true
	}
}

func (it *rangeIterator) finish() {
	it.done = true
	if it.sc != nil {
		it.scanned += it.sc.scanned
		it.sc.close()
		it.sc = nil
	}
}

func (it *rangeIterator) Scanned() int {
	if it.sc != nil {
		return it.scanned + it.sc.scanned
	}
	return it.scanned
}

func (it *rangeIterator) Row() Row   { return it.row }
func (it *rangeIterator) Err() error { return it.err }
func (it *rangeIterator) Close()     { it.finish() }

// emptyIterator yields nothing.
type emptyIterator struct{}

func (emptyIterator) Next() bool   { return false }
func (emptyIterator) Row() Row     { return Row{} }
func (emptyIterator) Err() error   { return nil }
func (emptyIterator) Close()       {}
func (emptyIterator) Scanned() int { return 0 }
