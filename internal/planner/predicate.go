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

package planner

import (
	"fmt"
	"strings"

	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/keyrange"
)

// Op is a comparison operator of a Condition.
type Op = keyrange.Op

const (
	OpEq     = keyrange.OpEq
	OpLt     = keyrange.OpLt
	OpLe     = keyrange.OpLe
	OpGt     = keyrange.OpGt
	OpGe     = keyrange.OpGe
	OpPrefix = keyrange.OpPrefix
)

// Condition compares one field with a value.
type Condition struct {
	Field string
	Op    Op
	Value codec.Value
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Value)
}

func Eq(field string, v codec.Value) Condition { return Condition{field, OpEq, v} }

func Lt(field string, v codec.Value) Condition { return Condition{field, OpLt, v} }

func Le(field string, v codec.Value) Condition { return Condition{field, OpLe, v} }

func Gt(field string, v codec.Value) Condition { return Condition{field, OpGt, v} }

func Ge(field string, v codec.Value) Condition { return Condition{field, OpGe, v} }

// HasPrefix matches string or bytes fields starting with v.
func HasPrefix(field string, v codec.Value) Condition { return Condition{field, OpPrefix, v} }

// Predicate is a disjunction of branches, each a conjunction of
// conditions. The zero Predicate, with nil Branches, matches every row; a
// non-nil empty Branches matches none.
type Predicate struct {
	Branches [][]Condition
}

// Where returns the conjunction of conds.
func Where(conds ...Condition) Predicate {
	return Predicate{Branches: [][]Condition{conds}}
}

// AnyOf returns the disjunction of preds.
func AnyOf(preds ...Predicate) Predicate {
	out := Predicate{Branches: [][]Condition{}}
	for _, p := range preds {
		out.Branches = append(out.Branches, p.normalized().Branches...)
	}
	return out
}

// In matches field equal to any of values. With no values it matches nothing.
func In(field string, values ...codec.Value) Predicate {
	out := Predicate{Branches: make([][]Condition, 0, len(values))}
	for _, v := range values {
		out.Branches = append(out.Branches, []Condition{Eq(field, v)})
	}
	return out
}

// And returns the conjunction of preds, distributed back into branches.
func And(preds ...Predicate) Predicate {
	out := Where()
	for _, p := range preds {
		p = p.normalized()
		next := make([][]Condition, 0, len(out.Branches)*len(p.Branches))
		for _, a := range out.Branches {
			for _, b := range p.Branches {
				branch := make([]Condition, 0, len(a)+len(b))
				branch = append(append(branch, a...), b...)
				next = append(next, branch)
			}
		}
		out.Branches = next
	}
	return out
}

// normalized returns p with the zero Predicate spelled as one empty branch.
func (p Predicate) normalized() Predicate {
	if p.Branches == nil {
		return Where()
	}
	return p
}

// MatchesAll reports whether p has a branch without conditions.
func (p Predicate) MatchesAll() bool {
	for _, b := range p.normalized().Branches {
		if len(b) == 0 {
			return true
		}
	}
	return false
}

func (p Predicate) String() string {
	p = p.normalized()
	if len(p.Branches) == 0 {
		return "FALSE"
	}
	branches := make([]string, len(p.Branches))
	for i, b := range p.Branches {
		conds := make([]string, len(b))
		for j, c := range b {
			conds[j] = c.String()
		}
		branches[i] = strings.Join(conds, " AND ")
		if len(b) == 0 {
			branches[i] = "TRUE"
		}
		if len(p.Branches) > 1 {
			branches[i] = "(" + branches[i] + ")"
		}
	}
	return strings.Join(branches, " OR ")
}

// Query is a request for one page of rows.
type Query struct {
	Table string
	Where Predicate

	// OrderBy names the ordering field. Empty orders by primary key, or by
	// the chosen index when one serves the predicate.
	OrderBy   string
	Direction keyrange.Direction

	Offset int
	Limit  int
}
