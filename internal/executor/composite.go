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
	"bytes"
	"container/heap"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/kv"
	"github.com/pkg/errors"
)

// CompositeExecutor unions branches of intersected primary key streams.
// Every stream is sorted by primary key, so a branch is a merge-join and
// the union is a k-way merge that drops repeated keys.
type CompositeExecutor struct{}

func (CompositeExecutor) Kind() access.Kind { return access.KindComposite }

func (CompositeExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.Composite)
	if !ok {
		panic(mismatch(access.KindComposite, path))
	}
	mustResolved(env)
	if budget <= 0 || len(p.Branches) == 0 || env.Range.Empty() {
		return emptyIterator{}, nil
	}

	branches := make([]*branchIterator, 0, len(p.Branches))
	for _, b := range p.Branches {
		bi, err := openBranch(src, p.Primary, b, env)
		if err != nil {
			for _, open := range branches {
				open.close()
			}
			return nil, err
		}
		branches = append(branches, bi)
	}

	u := &unionIterator{
		branches: branches,
		heap:     &branchHeap{backward: env.Direction == keyrange.Backward},
		anchor:   anchor,
		budget:   budget,
	}
	for _, b := range branches {
		if !u.push(b) {
			break
		}
	}
	if u.err != nil {
		u.Close()
		return nil, u.err
	}
	heap.Init(u.heap)
	return u, nil
}

// pkStream yields primary keys in direction order.
type pkStream interface {
	next() ([]byte, bool)
	scannedCount() int
	close()
}

// pointStream yields one primary key when it lies in the envelope.
type pointStream struct {
	pk   []byte
	done bool
}

func (s *pointStream) next() ([]byte, bool) {
	if s.done {
		return nil, false
	}
	s.done = true
	return s.pk, true
}

func (s *pointStream) scannedCount() int { return 0 }
func (s *pointStream) close()            { s.done = true }

// entryStream reads the entries of an index under prefix and yields their
// suffixes.
type entryStream struct {
	sc     *scanner
	prefix []byte
}

func (s *entryStream) next() ([]byte, bool) {
	key, _, ok := s.sc.next()
	if !ok {
		return nil, false
	}
	return key[len(s.prefix):], true
}

func (s *entryStream) scannedCount() int { return s.sc.scanned }
func (s *entryStream) close()            { s.sc.close() }

// branchIterator intersects its streams and fetches the surviving rows.
type branchIterator struct {
	src      kv.Source
	primary  string
	filters  keyrange.Filters
	backward bool
	lenient  bool

	streams []pkStream
	cur     [][]byte
	done    bool
	fetched int

	row Row
	err error
}

func openBranch(src kv.Source, primary string, b access.Branch, env envelope.Envelope) (*branchIterator, error) {
	bi := &branchIterator{
		src:      src,
		primary:  primary,
		filters:  b.Filters,
		backward: env.Direction == keyrange.Backward,
		streams:  make([]pkStream, 0, len(b.Streams)),
		cur:      make([][]byte, len(b.Streams)),
	}
	if len(b.Streams) == 0 {
		bi.done = true
		return bi, nil
	}
	for _, st := range b.Streams {
		if st.IsPrimary(primary) {
			// the primary key may name a row that does not exist
			bi.lenient = true
			bi.streams = append(bi.streams, &pointStream{pk: st.Prefix, done: !env.Contains(st.Prefix)})
			continue
		}
		sc, err := newScanner(src, st.Index, env.Nest(st.Prefix))
		if err != nil {
			bi.close()
			return nil, err
		}
		bi.streams = append(bi.streams, &entryStream{sc: sc, prefix: st.Prefix})
	}
	return bi, nil
}

// before reports whether x comes before y in the branch direction.
func (b *branchIterator) before(x, y []byte) bool {
	c := bytes.Compare(x, y)
	if b.backward {
		return c > 0
	}
	return c < 0
}

func (b *branchIterator) pull(i int) bool {
	pk, ok := b.streams[i].next()
	if !ok {
		b.close()
		return false
	}
	b.cur[i] = pk
	return true
}

// nextKey returns the next primary key present in every stream.
func (b *branchIterator) nextKey() ([]byte, bool) {
	if b.done {
		return nil, false
	}
	// every stream moves past the key returned last
	for i := range b.streams {
		if !b.pull(i) {
			return nil, false
		}
	}

	for {
		target := b.cur[0]
		for _, pk := range b.cur[1:] {
			if b.before(target, pk) {
				target = pk
			}
		}
		matched := true
		for i := range b.streams {
			for b.before(b.cur[i], target) {
				if !b.pull(i) {
					return nil, false
				}
			}
			if !bytes.Equal(b.cur[i], target) {
				matched = false
			}
		}
		if matched {
			return target, true
		}
	}
}

// next advances to the next row that exists and passes the filters.
func (b *branchIterator) next() bool {
	for {
		pk, ok := b.nextKey()
		if !ok {
			return false
		}
		value, found, err := b.src.Get(b.primary, pk)
		b.fetched++
		if err != nil {
			b.err = err
			b.close()
			return false
		}
		if !found {
			if b.lenient {
				continue
			}
			b.err = errors.Wrapf(ErrDanglingEntry, "primary key %x", pk)
			b.close()
			return false
		}
		if len(b.filters) > 0 {
			ok, err := b.filters.Match(value)
			if err != nil {
				b.err = err
				b.close()
				return false
			}
			if !ok {
				continue
			}
		}
		b.row = Row{Key: pk, PK: pk, Value: value}
		return true
	}
}

func (b *branchIterator) scanned() int {
	n := b.fetched
	for _, s := range b.streams {
		n += s.scannedCount()
	}
	return n
}

func (b *branchIterator) close() {
	b.done = true
	for _, s := range b.streams {
		s.close()
	}
}

// branchHeap orders branch heads by primary key in scan direction.
type branchHeap struct {
	items    []*branchIterator
	backward bool
}

func (h *branchHeap) Len() int { return len(h.items) }

func (h *branchHeap) Less(i, j int) bool {
	c := bytes.Compare(h.items[i].row.Key, h.items[j].row.Key)
	if h.backward {
		return c > 0
	}
	return c < 0
}

func (h *branchHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *branchHeap) Push(x any) { h.items = append(h.items, x.(*branchIterator)) }

func (h *branchHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return item
}

// unionIterator merges branch outputs, emitting each primary key once.
type unionIterator struct {
	branches []*branchIterator
	heap     *branchHeap
	anchor   []byte
	budget   int

	last []byte
	row  Row
	err  error
	done bool
}

// push advances b and, if it produced a row, adds it to the heap items
// without fixing heap order.
func (u *unionIterator) push(b *branchIterator) bool {
	if b.next() {
		u.heap.items = append(u.heap.items, b)
		return true
	}
	if b.err != nil {
		u.err = b.err
		return false
	}
	return true
}

func (u *unionIterator) Next() bool {
	if u.done {
		return false
	}
	for u.heap.Len() > 0 {
		b := heap.Pop(u.heap).(*branchIterator)
		row := b.row
		if b.next() {
			heap.Push(u.heap, b)
		} else if b.err != nil {
			u.err = b.err
			u.Close()
			return false
		}

		if u.last != nil && bytes.Equal(row.Key, u.last) {
			continue
		}
		u.last = row.Key
		if u.anchor != nil && bytes.Equal(row.Key, u.anchor) {
			continue
		}
		u.row = row
		if u.budget--; u.budget == 0 {
			u.Close()
		}
		return true
	}
	u.Close()
	return false
}

func (u *unionIterator) Row() Row   { return u.row }
func (u *unionIterator) Err() error { return u.err }

func (u *unionIterator) Close() {
	if u.done {
		return
	}
	u.done = true
	for _, b := range u.branches {
		b.close()
	}
}

func (u *unionIterator) Scanned() int {
	n := 0
	for _, b := range u.branches {
		n += b.scanned()
	}
	return n
}
