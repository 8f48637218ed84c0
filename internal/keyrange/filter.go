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

package keyrange

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nutsdb/nutsquery/internal/tuple"
)

// Matcher decides whether an encoded row qualifies.
type Matcher interface {
	Match(row []byte) (bool, error)
}

// Op is a raw comparison operator.
type Op uint8

const (
	OpEq Op = iota
	OpLt
	OpLe
	OpGt
	OpGe
	OpPrefix
)

var opNames = [...]string{"=", "<", "<=", ">", ">=", "^="}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// SlotFilter compares one element of an encoded row with an encoded
// operand. Encodings are order preserving, so bytes.Compare decides.
type SlotFilter struct {
	Slot    int
	Op      Op
	Operand []byte
}

// Match implements Matcher. A null slot only matches an equality against
// the null operand.
func (f SlotFilter) Match(row []byte) (bool, error) {
	raw, err := tuple.Slot(row, f.Slot)
	if err != nil {
		return false, err
	}
	if tuple.IsNull(raw) {
		return f.Op == OpEq && tuple.IsNull(f.Operand), nil
	}
	if f.Op == OpPrefix {
		return bytes.HasPrefix(raw, f.Operand), nil
	}
	c := bytes.Compare(raw, f.Operand)
	switch f.Op {
	case OpEq:
		return c == 0, nil
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGe:
		return c >= 0, nil
	}
	return false, fmt.Errorf("keyrange: unknown op %v", f.Op)
}

func (f SlotFilter) String() string {
	return fmt.Sprintf("$%d %s %x", f.Slot, f.Op, f.Operand)
}

// Filters is a conjunction of slot filters.
type Filters []SlotFilter

// Match implements Matcher. An empty conjunction matches every row.
func (fs Filters) Match(row []byte) (bool, error) {
	for _, f := range fs {
		ok, err := f.Match(row)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (fs Filters) String() string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return strings.Join(parts, " AND ")
}

// AnyOf is a disjunction of conjunctions.
type AnyOf []Filters

// Match implements Matcher. An empty disjunction matches nothing.
func (a AnyOf) Match(row []byte) (bool, error) {
	for _, fs := range a {
		ok, err := fs.Match(row)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (a AnyOf) String() string {
	parts := make([]string, len(a))
	for i, fs := range a {
		parts[i] = "(" + fs.String() + ")"
	}
	return strings.Join(parts, " OR ")
}
