// Copyright 2023 The nutsdb Author. All rights reserved.
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
	"bytes"

	"github.com/nutsdb/nutsquery/internal/kv"
	"github.com/tidwall/btree"
)

// Item is one key/value entry of a BTree.
type Item struct {
	Key   []byte
	Value []byte
}

// BTree represents one ordered index.
type BTree struct {
	btree *btree.BTreeG[*Item]
}

func byKey(a, b *Item) bool {
	return bytes.Compare(a.Key, b.Key) == -1
}

// NewBTree creates a new, empty BTree.
func NewBTree() *BTree {
	return &BTree{
		btree: btree.NewBTreeG(byKey),
	}
}

// Find retrieves the value stored under key.
func (bt *BTree) Find(key []byte) ([]byte, bool) {
	item, ok := bt.btree.Get(&Item{Key: key})
	if !ok {
		return nil, false
	}
	return item.Value, true
}

// Insert sets key to value and reports whether an entry was replaced.
func (bt *BTree) Insert(key, value []byte) bool {
	_, replaced := bt.btree.Set(&Item{Key: key, Value: value})
	return replaced
}

func (bt *BTree) Delete(key []byte) bool {
	_, deleted := bt.btree.Delete(&Item{Key: key})
	return deleted
}

func (bt *BTree) Count() int {
	return bt.btree.Len()
}

// Copy returns a copy-on-write snapshot. Later writes to either tree are
// invisible to the other.
func (bt *BTree) Copy() *BTree {
	return &BTree{btree: bt.btree.Copy()}
}

// All returns every item in key order.
func (bt *BTree) All() []*Item {
	return bt.btree.Items()
}

// Iterator returns a kv.Iterator over the tree.
func (bt *BTree) Iterator(reverse bool) kv.Iterator {
	return &Iterator{
		iter:    bt.btree.Iter(),
		reverse: reverse,
	}
}

// Iterator adapts a btree iterator to kv.Iterator.
type Iterator struct {
	iter    btree.IterG[*Item]
	reverse bool
	valid   bool
	closed  bool
}

func (it *Iterator) Seek(key []byte) bool {
	found := it.iter.Seek(&Item{Key: key})
	if !it.reverse {
		it.valid = found
		return it.valid
	}

	// Seek lands on the first key >= key; reversed iteration wants the
	// last key <= key.
	if !found {
		it.valid = it.iter.Last()
		return it.valid
	}
	if bytes.Compare(it.iter.Item().Key, key) > 0 {
		it.valid = it.iter.Prev()
		return it.valid
	}
	it.valid = true
	return true
}

func (it *Iterator) Rewind() bool {
	if it.reverse {
		it.valid = it.iter.Last()
	} else {
		it.valid = it.iter.First()
	}
	return it.valid
}

func (it *Iterator) Next() bool {
	if !it.valid {
		return false
	}
	if it.reverse {
		it.valid = it.iter.Prev()
	} else {
		it.valid = it.iter.Next()
	}
	return it.valid
}

func (it *Iterator) Valid() bool {
	return it.valid
}

func (it *Iterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return it.iter.Item().Key
}

func (it *Iterator) Value() []byte {
	if !it.valid {
		return nil
	}
	return it.iter.Item().Value
}

func (it *Iterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	it.valid = false
	it.iter.Release()
}
