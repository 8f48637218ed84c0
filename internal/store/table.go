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
	"fmt"

	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
)

var (
	// ErrMissingField is returned when a non-nullable field has no value.
	ErrMissingField = errors.New("missing value for non-nullable field")

	// ErrUnknownField is returned when a record names a field the table lacks.
	ErrUnknownField = errors.New("unknown field")
)

// CreateTable registers the primary index and every secondary index of t.
func (s *Store) CreateTable(t *catalog.Table) error {
	if err := s.CreateIndex(t.PrimaryIndexID()); err != nil {
		return err
	}
	for _, idx := range t.Indexes {
		if err := s.CreateIndex(catalog.IndexID(t.Name, idx.Name)); err != nil {
			return err
		}
	}
	return nil
}

// EncodeRow lays out record in table field order and returns the primary
// key bytes together with the row bytes.
func EncodeRow(t *catalog.Table, record map[string]codec.Value) (pk, row []byte, err error) {
	for name := range record {
		if _, _, ok := t.Field(name); !ok {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, t.Name, name)
		}
	}
	values := make([]codec.Value, len(t.Fields))
	for i, f := range t.Fields {
		v, ok := record[f.Name]
		if !ok || v.IsNull() {
			if !f.Nullable {
				return nil, nil, fmt.Errorf("%w: %s.%s", ErrMissingField, t.Name, f.Name)
			}
			values[i] = codec.Null()
			continue
		}
		if values[i], err = codec.Coerce(v, f.Kind); err != nil {
			return nil, nil, fmt.Errorf("%s.%s: %w", t.Name, f.Name, err)
		}
	}
	_, pkSlot, _ := t.Field(t.PrimaryKey)
	return codec.Encode(values[pkSlot]), codec.EncodeTuple(values...), nil
}

// IndexKey builds the key of a secondary index entry from an encoded row.
func IndexKey(t *catalog.Table, idx catalog.Index, row []byte) ([]byte, error) {
	values, err := codec.DecodeTuple(row)
	if err != nil {
		return nil, err
	}
	keyValues := make([]codec.Value, 0, len(idx.Fields)+1)
	for _, name := range idx.Fields {
		_, slot, _ := t.Field(name)
		keyValues = append(keyValues, values[slot])
	}
	_, pkSlot, _ := t.Field(t.PrimaryKey)
	keyValues = append(keyValues, values[pkSlot])
	return codec.EncodeTuple(keyValues...), nil
}

// Insert writes record into t, replacing any row with the same primary key
// and keeping every secondary index in step.
func (s *Store) Insert(t *catalog.Table, record map[string]codec.Value) error {
	pk, row, err := EncodeRow(t, record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	primary := s.treeLocked(t.PrimaryIndexID())
	if old, ok := primary.Find(pk); ok {
		if err := s.unindexLocked(t, old); err != nil {
			return err
		}
	}
	primary.Insert(pk, row)
	for _, idx := range t.Indexes {
		key, err := IndexKey(t, idx, row)
		if err != nil {
			return err
		}
		s.treeLocked(catalog.IndexID(t.Name, idx.Name)).Insert(key, pk)
	}
	return nil
}

// DeleteRow removes the row with primary key pk and its index entries.
func (s *Store) DeleteRow(t *catalog.Table, pk codec.Value) (bool, error) {
	pkValue, err := codec.Coerce(pk, t.PrimaryField().Kind)
	if err != nil {
		return false, err
	}
	key := codec.Encode(pkValue)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrStoreClosed
	}
	primary := s.treeLocked(t.PrimaryIndexID())
	old, ok := primary.Find(key)
	if !ok {
		return false, nil
	}
	if err := s.unindexLocked(t, old); err != nil {
		return false, err
	}
	primary.Delete(key)
	return true, nil
}

func (s *Store) unindexLocked(t *catalog.Table, row []byte) error {
	for _, idx := range t.Indexes {
		key, err := IndexKey(t, idx, row)
		if err != nil {
			return err
		}
		s.treeLocked(catalog.IndexID(t.Name, idx.Name)).Delete(key)
	}
	return nil
}

func (s *Store) treeLocked(index string) *BTree {
	tree, ok := s.trees[index]
	if !ok {
		tree = NewBTree()
		s.trees[index] = tree
	}
	return tree
}
