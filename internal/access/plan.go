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

package access

import (
	"fmt"

	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/tuple"
)

// SlotShape describes one element of a sort key.
type SlotShape struct {
	Kind     tuple.Kind
	Nullable bool
}

// KeyShape describes the sort key of a plan: the element kinds in order
// and the position of the primary key element.
type KeyShape struct {
	Slots  []SlotShape
	PkSlot int
}

// Arity returns the number of elements of a sort key.
func (s KeyShape) Arity() int {
	return len(s.Slots)
}

func (s KeyShape) String() string {
	out := "("
	for i, slot := range s.Slots {
		if i > 0 {
			out += ", "
		}
		out += slot.Kind.String()
		if slot.Nullable {
			out += "?"
		}
		if i == s.PkSlot {
			out += "*"
		}
	}
	return out + ")"
}

// Plan is a query ready to execute. It is built fresh for every call and
// never modified after the planner returns it.
type Plan struct {
	Table     string
	Path      Path
	Direction keyrange.Direction

	// Boundary is the scan range over the sort key space of Path.
	Boundary keyrange.Range
	Shape    KeyShape

	Offset int
	Limit  int

	Signature Signature
}

// SortIndex returns the identity of the index that orders the plan.
func (p *Plan) SortIndex() string {
	return p.Path.SortIndex()
}

func (p *Plan) String() string {
	return fmt.Sprintf("%s %s on %s %s offset=%d limit=%d sig=%s",
		p.Path.Kind(), p.Direction, p.SortIndex(), p.Boundary, p.Offset, p.Limit, p.Signature)
}
