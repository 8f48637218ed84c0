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

// Package kv declares the ordered key-value primitives the executors read
// through. The store package provides the implementation.
package kv

// Iterator walks one index in key order, or in reverse key order when it
// was opened reversed.
type Iterator interface {
	// Seek positions at the first key >= key, or for a reversed iterator
	// at the last key <= key. It reports whether a position was found.
	Seek(key []byte) bool

	// Rewind positions at the first key in iteration order.
	Rewind() bool

	// Next advances one step in iteration order.
	Next() bool

	Valid() bool
	Key() []byte
	Value() []byte

	// Close releases the iterator. It must be called exactly once.
	Close()
}

// Source is a consistent read view over every index of a store.
type Source interface {
	Iterator(index string, reverse bool) (Iterator, error)
	Get(index string, key []byte) ([]byte, bool, error)
}
