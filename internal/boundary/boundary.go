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

// Package boundary turns typed comparisons into raw key ranges and raw
// residual filters. It is the single place where values become bytes on
// the query path.
package boundary

import (
	"fmt"

	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/tuple"
)

// Cond is one comparison of a key slot against a typed value.
type Cond struct {
	Op    keyrange.Op
	Value codec.Value
}

func (c Cond) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Value)
}

// Point returns the range of every key whose leading elements are the tuple
// vals. For a single element primary key this is exactly one key, and for a
// secondary index it is every entry carrying those leading values whatever
// their primary key suffix.
func Point(vals ...codec.Value) keyrange.Range {
	return keyrange.Elements(codec.EncodeTuple(vals...))
}

// Range returns the keys that start with the tuple eq and whose next slot,
// of kind k, satisfies every cond. Range conditions never match null.
func Range(eq []codec.Value, k tuple.Kind, conds ...Cond) (keyrange.Range, error) {
	inner, err := SlotRange(k, conds...)
	if err != nil {
		return keyrange.Range{}, err
	}
	return keyrange.Nest(codec.EncodeTuple(eq...), inner), nil
}

// SlotRange returns the byte range of one element of kind k satisfying every
// cond. With no conditions it is unbounded, nulls included.
func SlotRange(k tuple.Kind, conds ...Cond) (keyrange.Range, error) {
	r := keyrange.All()
	if len(conds) == 0 {
		return r, nil
	}
	if hasRangeOp(conds) {
		lo, hi := tuple.KindSpan(k)
		if lo == nil {
			return keyrange.Range{}, fmt.Errorf("boundary: %v is not orderable", k)
		}
		r = keyrange.New(keyrange.Inclusive(lo), keyrange.Exclusive(hi))
	}
	for _, c := range conds {
		cr, err := condRange(c)
		if err != nil {
			return keyrange.Range{}, err
		}
		r = r.Intersect(cr)
	}
	return r, nil
}

func hasRangeOp(conds []Cond) bool {
	for _, c := range conds {
		switch c.Op {
		case keyrange.OpLt, keyrange.OpLe, keyrange.OpGt, keyrange.OpGe:
			return true
		}
	}
	return false
}

// condRange maps one comparison to a range over a single element.
//
// Equality and the bounds of > and <= end at ElementsEnd. Keys carrying the
// element followed by more slots, such as index keys followed by a primary
// key, then land on the right side of the bound, while a longer string or
// bytes value that merely starts with the element does not.
func condRange(c Cond) (keyrange.Range, error) {
	if c.Op == keyrange.OpPrefix {
		p, err := codec.EncodePrefix(c.Value)
		if err != nil {
			return keyrange.Range{}, err
		}
		return keyrange.Prefix(p), nil
	}

	enc := codec.Encode(c.Value)
	switch c.Op {
	case keyrange.OpEq:
		return keyrange.Elements(enc), nil
	case keyrange.OpGe:
		return keyrange.New(keyrange.Inclusive(enc), keyrange.Unbounded()), nil
	case keyrange.OpGt:
		return keyrange.New(keyrange.Inclusive(tuple.ElementsEnd(enc)), keyrange.Unbounded()), nil
	case keyrange.OpLt:
		return keyrange.New(keyrange.Unbounded(), keyrange.Exclusive(enc)), nil
	case keyrange.OpLe:
		return keyrange.New(keyrange.Unbounded(), keyrange.Exclusive(tuple.ElementsEnd(enc))), nil
	}
	return keyrange.Range{}, fmt.Errorf("boundary: unknown op %v", c.Op)
}

// Filter returns the raw residual filter evaluating c against slot of an
// encoded row tuple.
func Filter(slot int, c Cond) (keyrange.SlotFilter, error) {
	f := keyrange.SlotFilter{Slot: slot, Op: c.Op}
	if c.Op == keyrange.OpPrefix {
		p, err := codec.EncodePrefix(c.Value)
		if err != nil {
			return keyrange.SlotFilter{}, err
		}
		f.Operand = p
		return f, nil
	}
	f.Operand = codec.Encode(c.Value)
	return f, nil
}

// Key returns the encoded tuple vals, the exact key of a primary key value
// or the shared prefix of index entries carrying vals.
func Key(vals ...codec.Value) []byte {
	return codec.EncodeTuple(vals...)
}
