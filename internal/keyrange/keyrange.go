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

// Package keyrange holds the raw byte ranges and filters that the execution
// layer works with. Nothing here knows about typed values.
package keyrange

import (
	"bytes"
	"fmt"

	"github.com/nutsdb/nutsquery/internal/tuple"
)

// Direction defines the iteration direction.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Valid reports whether d is Forward or Backward.
func (d Direction) Valid() bool {
	return d == Forward || d == Backward
}

// Bound is one edge of a Range.
type Bound struct {
	Key       []byte
	Inclusive bool
	Unbounded bool
}

func Unbounded() Bound { return Bound{Unbounded: true} }

func Inclusive(key []byte) Bound { return Bound{Key: key, Inclusive: true} }

func Exclusive(key []byte) Bound { return Bound{Key: key} }

func (b Bound) String() string {
	if b.Unbounded {
		return "*"
	}
	if b.Inclusive {
		return fmt.Sprintf("%x", b.Key)
	}
	return fmt.Sprintf("(%x)", b.Key)
}

// Range is an ascending byte range [Lower, Upper]. Only ranges built by the
// constructors of this package are resolved; executors refuse the zero Range.
type Range struct {
	Lower    Bound
	Upper    Bound
	resolved bool
}

// New returns a resolved range.
func New(lower, upper Bound) Range {
	return Range{Lower: lower, Upper: upper, resolved: true}
}

// All returns the unbounded range.
func All() Range {
	return New(Unbounded(), Unbounded())
}

// Point returns the range holding exactly key.
func Point(key []byte) Range {
	return New(Inclusive(key), Inclusive(key))
}

// Prefix returns the range holding every key starting with p.
func Prefix(p []byte) Range {
	end := tuple.PrefixEnd(p)
	if end == nil {
		return New(Inclusive(p), Unbounded())
	}
	return New(Inclusive(p), Exclusive(end))
}

// Elements returns the range holding every key that starts with the whole
// elements of the tuple p. Unlike Prefix it excludes keys whose last string
// or bytes element only begins with p's.
func Elements(p []byte) Range {
	return New(Inclusive(p), Exclusive(tuple.ElementsEnd(p)))
}

// Resolved reports whether r was produced by a constructor.
func (r Range) Resolved() bool {
	return r.resolved
}

// AboveLower reports whether key satisfies the lower bound.
func (r Range) AboveLower(key []byte) bool {
	if r.Lower.Unbounded {
		return true
	}
	c := bytes.Compare(key, r.Lower.Key)
	return c > 0 || (c == 0 && r.Lower.Inclusive)
}

// BelowUpper reports whether key satisfies the upper bound.
func (r Range) BelowUpper(key []byte) bool {
	if r.Upper.Unbounded {
		return true
	}
	c := bytes.Compare(key, r.Upper.Key)
	return c < 0 || (c == 0 && r.Upper.Inclusive)
}

// Contains reports whether key lies inside r.
func (r Range) Contains(key []byte) bool {
	return r.AboveLower(key) && r.BelowUpper(key)
}

// Empty reports whether no key can satisfy r.
func (r Range) Empty() bool {
	if r.Lower.Unbounded || r.Upper.Unbounded {
		return false
	}
	c := bytes.Compare(r.Lower.Key, r.Upper.Key)
	if c != 0 {
		return c > 0
	}
	return !(r.Lower.Inclusive && r.Upper.Inclusive)
}

// Intersect returns the range satisfying both r and o.
func (r Range) Intersect(o Range) Range {
	return New(tighterLower(r.Lower, o.Lower), tighterUpper(r.Upper, o.Upper))
}

func tighterLower(a, b Bound) Bound {
	if a.Unbounded {
		return b
	}
	if b.Unbounded {
		return a
	}
	switch c := bytes.Compare(a.Key, b.Key); {
	case c > 0:
		return a
	case c < 0:
		return b
	}
	if !a.Inclusive {
		return a
	}
	return b
}

func tighterUpper(a, b Bound) Bound {
	if a.Unbounded {
		return b
	}
	if b.Unbounded {
		return a
	}
	switch c := bytes.Compare(a.Key, b.Key); {
	case c < 0:
		return a
	case c > 0:
		return b
	}
	if !a.Inclusive {
		return a
	}
	return b
}

// Nest maps a range expressed over key suffixes into the keys that start
// with the tuple prefix. An unbounded edge becomes the edge of the prefix
// elements themselves.
func Nest(prefix []byte, inner Range) Range {
	outer := Elements(prefix)
	lower, upper := outer.Lower, outer.Upper
	if !inner.Lower.Unbounded {
		lower = Bound{Key: concat(prefix, inner.Lower.Key), Inclusive: inner.Lower.Inclusive}
	}
	if !inner.Upper.Unbounded {
		upper = Bound{Key: concat(prefix, inner.Upper.Key), Inclusive: inner.Upper.Inclusive}
	}
	return New(lower, upper)
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func (r Range) String() string {
	if !r.resolved {
		return "<unresolved>"
	}
	left, right := "(", ")"
	if r.Lower.Unbounded || r.Lower.Inclusive {
		left = "["
	}
	if r.Upper.Unbounded || r.Upper.Inclusive {
		right = "]"
	}
	lo, hi := "-inf", "+inf"
	if !r.Lower.Unbounded {
		lo = fmt.Sprintf("%x", r.Lower.Key)
	}
	if !r.Upper.Unbounded {
		hi = fmt.Sprintf("%x", r.Upper.Key)
	}
	return left + lo + ", " + hi + right
}
