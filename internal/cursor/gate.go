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

// Package cursor encodes continuation tokens and validates them against a
// freshly built plan before any storage is touched.
package cursor

import (
	"fmt"
	"strings"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/tuple"
)

// State is a step of token validation.
type State uint8

const (
	StateReceived State = iota
	StateDecoded
	StateVersionOk
	StateSignatureOk
	StateDirectionOk
	StateWindowShapeOk
	StateBoundaryArityOk
	StateBoundaryTypeOk
	StatePkSlotOk
	StateContained
	StateAccepted
	StateRejected
)

var stateNames = [...]string{
	"received", "decoded", "version_ok", "signature_ok", "direction_ok", "window_shape_ok",
	"boundary_arity_ok", "boundary_type_ok", "pk_slot_ok", "contained", "accepted", "rejected",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Anchor is the position a validated token resumes after.
type Anchor struct {
	// Key is the sort key of the last row returned.
	Key   []byte
	Slots []Slot
}

// Trace records the states a token went through.
type Trace struct {
	States []State
}

func (t *Trace) Last() State {
	if len(t.States) == 0 {
		return StateReceived
	}
	return t.States[len(t.States)-1]
}

func (t *Trace) String() string {
	names := make([]string, len(t.States))
	for i, s := range t.States {
		names[i] = s.String()
	}
	return strings.Join(names, " -> ")
}

type validation struct {
	raw   []byte
	plan  *access.Plan
	token *Token
}

type gate struct {
	next   State
	reject RejectKind
	check  func(v *validation) error
}

// gates run in order; the first failure rejects the token.
var gates = []gate{
	{StateDecoded, RejectMalformed, decoded},
	{StateVersionOk, RejectVersion, versionOk},
	{StateSignatureOk, RejectSignature, signatureOk},
	{StateDirectionOk, RejectDirection, directionOk},
	{StateWindowShapeOk, RejectWindow, windowShapeOk},
	{StateBoundaryArityOk, RejectArity, boundaryArityOk},
	{StateBoundaryTypeOk, RejectType, boundaryTypeOk},
	{StatePkSlotOk, RejectPkSlot, pkSlotOk},
	{StateContained, RejectNotContained, contained},
}

// Validate runs raw through every gate against plan. It reads nothing but
// its arguments, so validating the same token twice gives the same result.
func Validate(raw []byte, plan *access.Plan) (*Anchor, *Trace, error) {
	v := &validation{raw: raw, plan: plan}
	trace := &Trace{States: []State{StateReceived}}

	for _, g := range gates {
		if err := g.check(v); err != nil {
			last := trace.Last()
			trace.States = append(trace.States, StateRejected)
			return nil, trace, &Error{Kind: g.reject, State: last, Err: err}
		}
		trace.States = append(trace.States, g.next)
	}
	trace.States = append(trace.States, StateAccepted)

	return &Anchor{Key: v.token.Key(), Slots: v.token.Slots}, trace, nil
}

func decoded(v *validation) error {
	t, err := Decode(v.raw)
	if err != nil {
		return err
	}
	v.token = t
	return nil
}

func versionOk(v *validation) error {
	if v.token.Version != Version {
		return fmt.Errorf("got %d want %d", v.token.Version, Version)
	}
	return nil
}

func signatureOk(v *validation) error {
	if v.token.Signature != v.plan.Signature {
		return fmt.Errorf("got %s want %s", v.token.Signature, v.plan.Signature)
	}
	if v.token.Index != v.plan.SortIndex() {
		return fmt.Errorf("index %q want %q", v.token.Index, v.plan.SortIndex())
	}
	return nil
}

func directionOk(v *validation) error {
	if v.token.Direction != v.plan.Direction {
		return fmt.Errorf("got %s want %s", v.token.Direction, v.plan.Direction)
	}
	return nil
}

func windowShapeOk(v *validation) error {
	if v.token.Offset != uint64(v.plan.Offset) {
		return fmt.Errorf("offset %d want %d", v.token.Offset, v.plan.Offset)
	}
	return nil
}

func boundaryArityOk(v *validation) error {
	if len(v.token.Slots) != v.plan.Shape.Arity() {
		return fmt.Errorf("got %d slots want %d", len(v.token.Slots), v.plan.Shape.Arity())
	}
	return nil
}

func boundaryTypeOk(v *validation) error {
	for i, s := range v.token.Slots {
		want := v.plan.Shape.Slots[i]
		if s.Kind != want.Kind {
			return fmt.Errorf("slot %d is %s want %s", i, s.Kind, want.Kind)
		}
		if err := tuple.CheckKind(s.Raw, want.Kind, want.Nullable); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}

func pkSlotOk(v *validation) error {
	if int(v.token.PkSlot) != v.plan.Shape.PkSlot {
		return fmt.Errorf("got %d want %d", v.token.PkSlot, v.plan.Shape.PkSlot)
	}
	if tuple.IsNull(v.token.Slots[v.token.PkSlot].Raw) {
		return fmt.Errorf("primary key slot %d is null", v.token.PkSlot)
	}
	return nil
}

func contained(v *validation) error {
	return envelope.Compute(v.plan).Check(v.token.Key())
}
