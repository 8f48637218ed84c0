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

package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/tuple"
)

const (
	// Version is the token layout written by Encode.
	Version uint8 = 1

	tokenMagic uint16 = 0x514E

	// TokenHeaderSize is crc(4) | magic(2) | version(1) | direction(1) |
	// signature(8) | offset(8) | pkSlot(2) | indexLen(2).
	TokenHeaderSize = 28

	slotHeaderSize = 5
)

var errShortToken = errors.New("token truncated")

// Slot is one element of an anchor: its declared kind and raw bytes.
type Slot struct {
	Kind tuple.Kind
	Raw  []byte
}

// Token is the decoded form of a continuation token.
type Token struct {
	Version   uint8
	Direction keyrange.Direction
	Signature access.Signature
	Offset    uint64
	PkSlot    uint16
	Index     string
	Slots     []Slot
}

// NewToken builds the token resuming plan after the row whose sort key is key.
func NewToken(plan *access.Plan, key []byte) (*Token, error) {
	elems, err := tuple.Elements(key)
	if err != nil {
		return nil, err
	}
	if len(elems) != plan.Shape.Arity() {
		return nil, fmt.Errorf("cursor: key has %d elements, shape %s", len(elems), plan.Shape)
	}
	slots := make([]Slot, len(elems))
	for i, raw := range elems {
		slots[i] = Slot{Kind: plan.Shape.Slots[i].Kind, Raw: append([]byte(nil), raw...)}
	}
	return &Token{
		Version:   Version,
		Direction: plan.Direction,
		Signature: plan.Signature,
		Offset:    uint64(plan.Offset),
		PkSlot:    uint16(plan.Shape.PkSlot),
		Index:     plan.SortIndex(),
		Slots:     slots,
	}, nil
}

// Size returns the encoded size of t.
func (t *Token) Size() int {
	n := TokenHeaderSize + len(t.Index) + 2
	for _, s := range t.Slots {
		n += slotHeaderSize + len(s.Raw)
	}
	return n
}

// Encode returns the wire form of t. Every field is written.
func (t *Token) Encode() []byte {
	buf := make([]byte, t.Size())

	binary.LittleEndian.PutUint16(buf[4:6], tokenMagic)
	buf[6] = t.Version
	buf[7] = byte(t.Direction)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(t.Signature))
	binary.LittleEndian.PutUint64(buf[16:24], t.Offset)
	binary.LittleEndian.PutUint16(buf[24:26], t.PkSlot)
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(t.Index)))

	off := TokenHeaderSize
	off += copy(buf[off:], t.Index)
	binary.LittleEndian.PutUint16(buf[off:off+2], uint16(len(t.Slots)))
	off += 2
	for _, s := range t.Slots {
		buf[off] = byte(s.Kind)
		binary.LittleEndian.PutUint32(buf[off+1:off+5], uint32(len(s.Raw)))
		off += slotHeaderSize
		off += copy(buf[off:], s.Raw)
	}

	binary.LittleEndian.PutUint32(buf[0:4], crc32.ChecksumIEEE(buf[4:]))
	return buf
}

// Decode parses a token. A token of another version is returned with only
// its version set, since its layout past the version byte is unknown.
func Decode(buf []byte) (*Token, error) {
	if len(buf) < 7 {
		return nil, errShortToken
	}
	if crc32.ChecksumIEEE(buf[4:]) != binary.LittleEndian.Uint32(buf[0:4]) {
		return nil, errors.New("token crc mismatch")
	}
	if binary.LittleEndian.Uint16(buf[4:6]) != tokenMagic {
		return nil, errors.New("token magic mismatch")
	}
	t := &Token{Version: buf[6]}
	if t.Version != Version {
		return t, nil
	}
	if len(buf) < TokenHeaderSize {
		return nil, errShortToken
	}

	t.Direction = keyrange.Direction(buf[7])
	t.Signature = access.Signature(binary.LittleEndian.Uint64(buf[8:16]))
	t.Offset = binary.LittleEndian.Uint64(buf[16:24])
	t.PkSlot = binary.LittleEndian.Uint16(buf[24:26])
	indexLen := int(binary.LittleEndian.Uint16(buf[26:28]))

	off := TokenHeaderSize
	if len(buf) < off+indexLen+2 {
		return nil, errShortToken
	}
	t.Index = string(buf[off : off+indexLen])
	off += indexLen
	count := int(binary.LittleEndian.Uint16(buf[off : off+2]))
	off += 2

	t.Slots = make([]Slot, 0, count)
	for i := 0; i < count; i++ {
		if len(buf) < off+slotHeaderSize {
			return nil, errShortToken
		}
		kind := tuple.Kind(buf[off])
		size := int(binary.LittleEndian.Uint32(buf[off+1 : off+5]))
		off += slotHeaderSize
		if size > len(buf)-off {
			return nil, errShortToken
		}
		t.Slots = append(t.Slots, Slot{Kind: kind, Raw: append([]byte(nil), buf[off:off+size]...)})
		off += size
	}
	if off != len(buf) {
		return nil, fmt.Errorf("token has %d trailing bytes", len(buf)-off)
	}
	return t, nil
}

// Key returns the sort key the token's slots spell.
func (t *Token) Key() []byte {
	var key []byte
	for _, s := range t.Slots {
		key = append(key, s.Raw...)
	}
	return key
}
