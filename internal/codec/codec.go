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

// Package codec translates typed values to and from ordered key bytes.
// It is the only package that knows what element payloads mean.
package codec

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/nutsdb/nutsquery/internal/tuple"
)

var (
	// ErrUnsupportedType is returned when a Go value has no scalar kind.
	ErrUnsupportedType = errors.New("codec: unsupported type")

	// ErrIncompatible is returned when a value cannot be coerced to a kind.
	ErrIncompatible = errors.New("codec: value not assignable to kind")

	// ErrNotPrefixable is returned when a prefix is requested for a fixed width kind.
	ErrNotPrefixable = errors.New("codec: prefix needs a string or bytes value")
)

const signBit = uint64(1) << 63

// Encode returns the ordered encoding of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// EncodeTuple concatenates the encodings of vs.
func EncodeTuple(vs ...Value) []byte {
	var buf []byte
	for _, v := range vs {
		buf = AppendValue(buf, v)
	}
	return buf
}

// AppendValue appends the encoding of v to dst.
func AppendValue(dst []byte, v Value) []byte {
	if v.null {
		return append(dst, tuple.TagNull)
	}
	switch v.kind {
	case KindBool:
		if v.b {
			return append(dst, tuple.TagTrue)
		}
		return append(dst, tuple.TagFalse)
	case KindInt:
		return appendFixed(dst, tuple.TagInt, uint64(v.i)^signBit)
	case KindUint:
		return appendFixed(dst, tuple.TagUint, v.u)
	case KindFloat:
		bits := math.Float64bits(v.f)
		if bits&signBit != 0 {
			bits = ^bits
		} else {
			bits |= signBit
		}
		return appendFixed(dst, tuple.TagFloat, bits)
	case KindString:
		return tuple.AppendTerminated(append(dst, tuple.TagString), []byte(v.s))
	case KindBytes:
		return tuple.AppendTerminated(append(dst, tuple.TagBytes), v.raw)
	}
	return append(dst, tuple.TagNull)
}

func appendFixed(dst []byte, tag byte, bits uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bits)
	return append(append(dst, tag), b[:]...)
}

// EncodePrefix returns the bytes shared by every encoding of a string or
// bytes value starting with v.
func EncodePrefix(v Value) ([]byte, error) {
	if v.null {
		return nil, ErrNotPrefixable
	}
	switch v.kind {
	case KindString:
		return tuple.AppendEscaped([]byte{tuple.TagString}, []byte(v.s)), nil
	case KindBytes:
		return tuple.AppendEscaped([]byte{tuple.TagBytes}, v.raw), nil
	}
	return nil, ErrNotPrefixable
}

// DecodeNext decodes the element at the start of b and returns its length.
func DecodeNext(b []byte) (Value, int, error) {
	n, err := tuple.ElementLen(b)
	if err != nil {
		return Value{}, 0, err
	}
	raw := b[:n]
	switch raw[0] {
	case tuple.TagNull:
		return Null(), n, nil
	case tuple.TagFalse:
		return Bool(false), n, nil
	case tuple.TagTrue:
		return Bool(true), n, nil
	case tuple.TagInt:
		return Int(int64(binary.BigEndian.Uint64(raw[1:]) ^ signBit)), n, nil
	case tuple.TagUint:
		return Uint(binary.BigEndian.Uint64(raw[1:])), n, nil
	case tuple.TagFloat:
		bits := binary.BigEndian.Uint64(raw[1:])
		if bits&signBit != 0 {
			bits &^= signBit
		} else {
			bits = ^bits
		}
		return Float(math.Float64frombits(bits)), n, nil
	case tuple.TagString:
		payload, err := tuple.Unescape(raw)
		if err != nil {
			return Value{}, 0, err
		}
		return String(string(payload)), n, nil
	case tuple.TagBytes:
		payload, err := tuple.Unescape(raw)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{kind: KindBytes, raw: payload}, n, nil
	}
	return Value{}, 0, tuple.ErrMalformed
}

// Decode decodes exactly one element.
func Decode(raw []byte) (Value, error) {
	v, n, err := DecodeNext(raw)
	if err != nil {
		return Value{}, err
	}
	if n != len(raw) {
		return Value{}, tuple.ErrMalformed
	}
	return v, nil
}

// DecodeTuple decodes every element of b.
func DecodeTuple(b []byte) ([]Value, error) {
	var out []Value
	for len(b) > 0 {
		v, n, err := DecodeNext(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}

// Coerce converts v to kind k when no information is lost. Null passes
// through unchanged.
func Coerce(v Value, k Kind) (Value, error) {
	if v.null || v.kind == k {
		return v, nil
	}
	switch {
	case v.kind == KindInt && k == KindUint:
		if v.i >= 0 {
			return Uint(uint64(v.i)), nil
		}
	case v.kind == KindUint && k == KindInt:
		if v.u <= math.MaxInt64 {
			return Int(int64(v.u)), nil
		}
	case v.kind == KindInt && k == KindFloat:
		if f := float64(v.i); int64(f) == v.i {
			return Float(f), nil
		}
	case v.kind == KindUint && k == KindFloat:
		if f := float64(v.u); uint64(f) == v.u {
			return Float(f), nil
		}
	case v.kind == KindFloat && k == KindInt:
		if i := int64(v.f); float64(i) == v.f {
			return Int(i), nil
		}
	case v.kind == KindString && k == KindBytes:
		return Bytes([]byte(v.s)), nil
	}
	return Value{}, ErrIncompatible
}
