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

package codec

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/nutsdb/nutsquery/internal/tuple"
)

type Kind = tuple.Kind

const (
	KindBool   = tuple.KindBool
	KindInt    = tuple.KindInt
	KindUint   = tuple.KindUint
	KindFloat  = tuple.KindFloat
	KindString = tuple.KindString
	KindBytes  = tuple.KindBytes
)

// Value is a typed scalar as seen by predicates and records. A null Value
// has no kind.
type Value struct {
	kind tuple.Kind
	null bool
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	raw  []byte
}

func Null() Value { return Value{null: true} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, raw: cp}
}

// Kind returns the value kind, KindInvalid for null.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.null }

func (v Value) AsBool() bool { return v.b }

func (v Value) AsInt() int64 { return v.i }

func (v Value) AsUint() uint64 { return v.u }

func (v Value) AsFloat() float64 { return v.f }

func (v Value) AsString() string { return v.s }

func (v Value) AsBytes() []byte { return v.raw }

// Interface returns the value as a plain Go value, nil for null.
func (v Value) Interface() any {
	if v.null {
		return nil
	}
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return v.raw
	}
	return nil
}

func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindBytes:
		return fmt.Sprintf("0x%x", v.raw)
	}
	return "<invalid>"
}

// Equal reports whether a and b encode to the same bytes.
func Equal(a, b Value) bool {
	return bytes.Equal(Encode(a), Encode(b))
}

// Compare orders values the same way their encodings are ordered.
func Compare(a, b Value) int {
	return bytes.Compare(Encode(a), Encode(b))
}

// FromAny converts a plain Go value into a Value.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return Bytes(t), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, x)
}
