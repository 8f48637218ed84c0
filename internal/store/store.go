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

package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/nutsdb/nutsquery/internal/kv"
)

var (
	// ErrStoreClosed is returned when the store is closed.
	ErrStoreClosed = errors.New("store is closed")

	// ErrIndexNotFound is returned when reading an index that does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrKeyEmpty is returned if an empty key is passed on a write.
	ErrKeyEmpty = errors.New("key cannot be empty")
)

// Store is an in-memory collection of ordered indexes keyed by index
// identity. Reads go through a View so each query sees one consistent
// snapshot.
type Store struct {
	mu     sync.RWMutex
	trees  map[string]*BTree
	closed bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{trees: make(map[string]*BTree)}
}

// CreateIndex registers an index identity. It is a no-op for an existing index.
func (s *Store) CreateIndex(index string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.trees[index]; !ok {
		s.trees[index] = NewBTree()
	}
	return nil
}

// Put sets key to value inside index, creating the index on first use.
func (s *Store) Put(index string, key, value []byte) error {
	if len(key) == 0 {
		return ErrKeyEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	tree, ok := s.trees[index]
	if !ok {
		tree = NewBTree()
		s.trees[index] = tree
	}
	tree.Insert(key, value)
	return nil
}

// Get reads key from index.
func (s *Store) Get(index string, key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrStoreClosed
	}
	tree, ok := s.trees[index]
	if !ok {
		return nil, false, ErrIndexNotFound
	}
	v, found := tree.Find(key)
	return v, found, nil
}

// Delete removes key from index and reports whether it existed.
func (s *Store) Delete(index string, key []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrStoreClosed
	}
	tree, ok := s.trees[index]
	if !ok {
		return false, ErrIndexNotFound
	}
	return tree.Delete(key), nil
}

// Count returns the number of entries in index.
func (s *Store) Count(index string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	tree, ok := s.trees[index]
	if !ok {
		return 0, ErrIndexNotFound
	}
	return tree.Count(), nil
}

// Indexes returns every index identity in sorted order.
func (s *Store) Indexes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.trees))
	for name := range s.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View returns a read-only snapshot of every index.
func (s *Store) View() (*View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	trees := make(map[string]*BTree, len(s.trees))
	for name, tree := range s.trees {
		trees[name] = tree.Copy()
	}
	return &View{trees: trees}, nil
}

// Close releases the store. Later operations return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	s.trees = nil
	return nil
}

// View is an immutable snapshot implementing kv.Source.
type View struct {
	trees map[string]*BTree
}

func (v *View) Iterator(index string, reverse bool) (kv.Iterator, error) {
	tree, ok := v.trees[index]
	if !ok {
		return nil, ErrIndexNotFound
	}
	return tree.Iterator(reverse), nil
}

func (v *View) Get(index string, key []byte) ([]byte, bool, error) {
	tree, ok := v.trees[index]
	if !ok {
		return nil, false, ErrIndexNotFound
	}
	value, found := tree.Find(key)
	return value, found, nil
}
