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
	"errors"
	"fmt"

	"github.com/nutsdb/nutsquery/internal/envelope"
)

var (
	// ErrMalformedToken is returned when a token cannot be decoded.
	ErrMalformedToken = errors.New("malformed continuation token")

	// ErrVersionMismatch is returned when a token was written by another token format version.
	ErrVersionMismatch = errors.New("continuation token version mismatch")

	// ErrSignatureMismatch is returned when a token was issued for a query of another shape.
	ErrSignatureMismatch = errors.New("continuation token signature mismatch")

	// ErrDirectionMismatch is returned when a token was issued for the opposite direction.
	ErrDirectionMismatch = errors.New("continuation token direction mismatch")

	// ErrWindowMismatch is returned when a token was issued for another initial offset.
	ErrWindowMismatch = errors.New("continuation token window mismatch")

	// ErrArityMismatch is returned when a token's anchor has the wrong number of slots.
	ErrArityMismatch = errors.New("continuation token arity mismatch")

	// ErrTypeMismatch is returned when an anchor slot does not carry the plan's kind.
	ErrTypeMismatch = errors.New("continuation token type mismatch")

	// ErrPkSlotMismatch is returned when the anchor's primary key slot is wrong or null.
	ErrPkSlotMismatch = errors.New("continuation token primary key slot mismatch")

	// ErrNotContained is returned when the anchor lies outside the plan's envelope.
	ErrNotContained = envelope.ErrNotContained
)

// RejectKind classifies a rejected token by the gate that refused it.
type RejectKind uint8

const (
	RejectMalformed RejectKind = iota + 1
	RejectVersion
	RejectSignature
	RejectDirection
	RejectWindow
	RejectArity
	RejectType
	RejectPkSlot
	RejectNotContained
)

var rejectSentinels = map[RejectKind]error{
	RejectMalformed:    ErrMalformedToken,
	RejectVersion:      ErrVersionMismatch,
	RejectSignature:    ErrSignatureMismatch,
	RejectDirection:    ErrDirectionMismatch,
	RejectWindow:       ErrWindowMismatch,
	RejectArity:        ErrArityMismatch,
	RejectType:         ErrTypeMismatch,
	RejectPkSlot:       ErrPkSlotMismatch,
	RejectNotContained: ErrNotContained,
}

var rejectNames = map[RejectKind]string{
	RejectMalformed:    "malformed",
	RejectVersion:      "version",
	RejectSignature:    "signature",
	RejectDirection:    "direction",
	RejectWindow:       "window",
	RejectArity:        "arity",
	RejectType:         "type",
	RejectPkSlot:       "pk_slot",
	RejectNotContained: "not_contained",
}

func (k RejectKind) String() string {
	if name, ok := rejectNames[k]; ok {
		return name
	}
	return fmt.Sprintf("reject(%d)", uint8(k))
}

// Sentinel returns the error variable matching k.
func (k RejectKind) Sentinel() error {
	return rejectSentinels[k]
}

// Error is returned when a token is rejected. State is the last gate the
// token passed.
type Error struct {
	Kind  RejectKind
	State State
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v after %s", e.Kind.Sentinel(), e.State)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the sentinel of the rejection kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsContinuation reports whether err rejects a continuation token. The
// caller recovers by dropping the token and starting over at offset zero.
func IsContinuation(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
