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

// Package tuple describes the byte layout of ordered key elements.
//
// An element is a tag byte followed by its payload. Fixed width kinds carry
// eight payload bytes, string and bytes payloads are escaped and terminated
// by 0x00. Nothing in this package interprets payloads as values; it only
// frames them, which is all the execution layer is allowed to do.
package tuple

import (
	"errors"
	"fmt"
)

// Kind is the scalar kind of a field or key slot.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
)

const (
	TagNull   byte = 0x01
	TagFalse  byte = 0x02
	TagTrue   byte = 0x03
	TagInt    byte = 0x10
	TagUint   byte = 0x11
	TagFloat  byte = 0x12
	TagString byte = 0x20
	TagBytes  byte = 0x21

	escapeByte     byte = 0xFF
	terminatorByte byte = 0x00

	fixedPayloadSize = 8
)

var (
	// ErrMalformed is returned when bytes do not frame a valid element.
	ErrMalformed = errors.New("tuple: malformed element")

	// ErrKind is returned when an element does not carry the expected kind.
	ErrKind = errors.New("tuple: unexpected element kind")

	// ErrSlotOutOfRange is returned when a tuple has fewer elements than requested.
	ErrSlotOutOfRange = errors.New("tuple: slot out of range")
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat:   "float",
	KindString:  "string",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k names a storable kind.
func (k Kind) Valid() bool {
	return k >= KindBool && k <= KindBytes
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && k.Valid() {
			return k, true
		}
	}
	return KindInvalid, false
}

// KindOf returns the kind framed by tag. Null elements report KindInvalid
// with null set.
func KindOf(tag byte) (kind Kind, null bool, err error) {
	switch tag {
	case TagNull:
		return KindInvalid, true, nil
	case TagFalse, TagTrue:
		return KindBool, false, nil
	case TagInt:
		return KindInt, false, nil
	case TagUint:
		return KindUint, false, nil
	case TagFloat:
		return KindFloat, false, nil
	case TagString:
		return KindString, false, nil
	case TagBytes:
		return KindBytes, false, nil
	}
	return KindInvalid, false, ErrMalformed
}

// KindSpan returns the half open byte range [lower, upper) holding every
// non-null element of kind k.
func KindSpan(k Kind) (lower, upper []byte) {
	switch k {
	case KindBool:
		return []byte{TagFalse}, []byte{TagTrue + 1}
	case KindInt:
		return []byte{TagInt}, []byte{TagInt + 1}
	case KindUint:
		return []byte{TagUint}, []byte{TagUint + 1}
	case KindFloat:
		return []byte{TagFloat}, []byte{TagFloat + 1}
	case KindString:
		return []byte{TagString}, []byte{TagString + 1}
	case KindBytes:
		return []byte{TagBytes}, []byte{TagBytes + 1}
	}
	return nil, nil
}

// ElementLen returns the length of the element at the start of b.
func ElementLen(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrMalformed
	}
	switch b[0] {
	case TagNull, TagFalse, TagTrue:
		return 1, nil
	case TagInt, TagUint, TagFloat:
		if len(b) < 1+fixedPayloadSize {
			return 0, ErrMalformed
		}
		return 1 + fixedPayloadSize, nil
	case TagString, TagBytes:
		for i := 1; i < len(b); i++ {
			if b[i] != terminatorByte {
				continue
			}
			if i+1 < len(b) && b[i+1] == escapeByte {
				i++
				continue
			}
			return i + 1, nil
		}
	}
	return 0, ErrMalformed
}

// Elements splits b into its elements. The returned slices alias b.
func Elements(b []byte) ([][]byte, error) {
	var out [][]byte
	for len(b) > 0 {
		n, err := ElementLen(b)
		if err != nil {
			return nil, err
		}
		out = append(out, b[:n:n])
		b = b[n:]
	}
	return out, nil
}

// Slot returns the i-th element of b.
func Slot(b []byte, i int) ([]byte, error) {
	for pos := 0; len(b) > 0; pos++ {
		n, err := ElementLen(b)
		if err != nil {
			return nil, err
		}
		if pos == i {
			return b[:n:n], nil
		}
		b = b[n:]
	}
	return nil, ErrSlotOutOfRange
}

// IsNull reports whether raw is the null element.
func IsNull(raw []byte) bool {
	return len(raw) == 1 && raw[0] == TagNull
}

// CheckKind verifies raw is exactly one well formed element of kind k.
func CheckKind(raw []byte, k Kind, nullable bool) error {
	n, err := ElementLen(raw)
	if err != nil {
		return err
	}
	if n != len(raw) {
		return ErrMalformed
	}
	got, null, err := KindOf(raw[0])
	if err != nil {
		return err
	}
	if null {
		if nullable {
			return nil
		}
		return ErrKind
	}
	if got != k {
		return ErrKind
	}
	return nil
}

// PrefixEnd returns the smallest key that sorts after every key having b
// as a prefix. It returns nil when no such key exists.
func PrefixEnd(b []byte) []byte {
	end := make([]byte, len(b))
	copy(end, b)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// ElementsEnd returns the smallest key that sorts after every key whose
// leading elements are exactly the tuple b. No tag is 0xFF and an escape
// byte only follows a 0x00 inside a payload, so b+0xFF sorts after those
// keys and before any key whose last string or bytes element extends b's.
func ElementsEnd(b []byte) []byte {
	end := make([]byte, len(b), len(b)+1)
	copy(end, b)
	return append(end, escapeByte)
}

// AppendEscaped appends payload to dst with every 0x00 escaped. It does not
// append the terminator.
func AppendEscaped(dst, payload []byte) []byte {
	for _, c := range payload {
		dst = append(dst, c)
		if c == terminatorByte {
			dst = append(dst, escapeByte)
		}
	}
	return dst
}

// AppendTerminated appends an escaped payload and its terminator.
func AppendTerminated(dst, payload []byte) []byte {
	return append(AppendEscaped(dst, payload), terminatorByte)
}

// Unescape returns the payload of a string or bytes element.
func Unescape(raw []byte) ([]byte, error) {
	n, err := ElementLen(raw)
	if err != nil {
		return nil, err
	}
	if raw[0] != TagString && raw[0] != TagBytes {
		return nil, ErrKind
	}
	body := raw[1 : n-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		out = append(out, body[i])
		if body[i] == terminatorByte {
			i++
		}
	}
	return out, nil
}
