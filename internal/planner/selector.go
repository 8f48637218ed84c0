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
	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/boundary"
	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/pkg/errors"
)

// selector walks the access path tiers for one query.
type selector struct {
	table *catalog.Table
	order ordering
}

// candidate is one way to serve a single branch from a secondary index.
type candidate struct {
	kind     access.Kind
	index    catalog.Index
	boundary keyrange.Range
	used     []bool
	score    int
}

// better orders candidates of one tier: a higher score wins, then fewer
// index fields, then the index name.
func (c *candidate) better(o *candidate) bool {
	if c.score != o.score {
		return c.score > o.score
	}
	if len(c.index.Fields) != len(o.index.Fields) {
		return len(c.index.Fields) < len(o.index.Fields)
	}
	return c.index.Name < o.index.Name
}

func (s *selector) choose(branches [][]cond) (*access.Plan, error) {
	if len(branches) == 1 {
		return s.single(branches[0])
	}
	return s.multi(branches)
}

func (s *selector) primary() string {
	return s.table.PrimaryIndexID()
}

func (s *selector) indexID(idx catalog.Index) string {
	return catalog.IndexID(s.table.Name, idx.Name)
}

func (s *selector) pkSlot() int {
	_, slot, _ := s.table.Field(s.table.PrimaryKey)
	return slot
}

func (s *selector) pkShape() access.KeyShape {
	return access.KeyShape{
		Slots: []access.SlotShape{{Kind: s.table.PrimaryField().Kind}},
	}
}

func (s *selector) indexShape(idx catalog.Index) access.KeyShape {
	slots := make([]access.SlotShape, 0, len(idx.Fields)+1)
	for _, name := range idx.Fields {
		f, _, _ := s.table.Field(name)
		slots = append(slots, access.SlotShape{Kind: f.Kind, Nullable: f.Nullable})
	}
	slots = append(slots, access.SlotShape{Kind: s.table.PrimaryField().Kind})
	return access.KeyShape{Slots: slots, PkSlot: len(idx.Fields)}
}

// allows reports whether idx produces rows in the requested order when
// scanned by its leading fields.
func (s *selector) allows(idx catalog.Index) bool {
	return s.order.none() || idx.Fields[0] == s.order.field
}

func (s *selector) single(conds []cond) (*access.Plan, error) {
	pk := s.pkSlot()

	if s.order.pkOrdered() {
		if plan, err := s.pkPoint(conds, pk); plan != nil || err != nil {
			return plan, err
		}
		if plan, err := s.pkRange(conds, pk); plan != nil || err != nil {
			return plan, err
		}
	}

	tiers := []func([]cond) (*candidate, error){s.indexPoint, s.indexRange, s.indexPrefix}
	for _, tier := range tiers {
		c, err := tier(conds)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return s.indexPlan(c, conds)
		}
	}

	if !s.order.pkOrdered() {
		// resolveOrder guarantees an index leads with the ordering field.
		return s.ordered(conds)
	}
	return s.fullScan([][]cond{conds}), nil
}

func (s *selector) pkPoint(conds []cond, pk int) (*access.Plan, error) {
	for i, c := range conds {
		if c.slot != pk || c.op != OpEq {
			continue
		}
		used := make([]bool, len(conds))
		used[i] = true
		residual, err := residualOf(conds, used)
		if err != nil {
			return nil, err
		}
		return &access.Plan{
			Path:     access.PKPoint{Primary: s.primary(), Residual: residual},
			Boundary: boundary.Point(c.value),
			Shape:    s.pkShape(),
		}, nil
	}
	return nil, nil
}

func (s *selector) pkRange(conds []cond, pk int) (*access.Plan, error) {
	used := make([]bool, len(conds))
	var bounds []boundary.Cond
	for i, c := range conds {
		if c.slot == pk && (c.isRange() || c.op == OpPrefix) {
			used[i] = true
			bounds = append(bounds, c.boundary())
		}
	}
	if len(bounds) == 0 {
		return nil, nil
	}
	r, err := boundary.Range(nil, s.table.PrimaryField().Kind, bounds...)
	if err != nil {
		return nil, errors.Wrap(ErrKindMismatch, err.Error())
	}
	residual, err := residualOf(conds, used)
	if err != nil {
		return nil, err
	}
	return &access.Plan{
		Path:     access.PKRange{Primary: s.primary(), Residual: residual},
		Boundary: r,
		Shape:    s.pkShape(),
	}, nil
}

// eqFor returns the first equality on field not yet used.
func eqFor(conds []cond, used []bool, field string) int {
	for i, c := range conds {
		if !used[i] && c.op == OpEq && c.field.Name == field {
			return i
		}
	}
	return -1
}

// boundByEq reports whether every field of idx has an equality, marking
// the conditions it consumes.
func boundByEq(conds []cond, idx catalog.Index) ([]codec.Value, []bool, bool) {
	used := make([]bool, len(conds))
	vals := make([]codec.Value, 0, len(idx.Fields))
	for _, name := range idx.Fields {
		i := eqFor(conds, used, name)
		if i < 0 {
			return nil, nil, false
		}
		used[i] = true
		vals = append(vals, conds[i].value)
	}
	return vals, used, true
}

func (s *selector) indexPoint(conds []cond) (*candidate, error) {
	var best *candidate
	for _, idx := range s.table.Indexes {
		if !s.allows(idx) && !s.order.pk {
			continue
		}
		vals, used, ok := boundByEq(conds, idx)
		if !ok {
			continue
		}
		c := &candidate{
			kind:     access.KindIndexPoint,
			index:    idx,
			boundary: boundary.Point(vals...),
			used:     used,
			score:    2 * len(idx.Fields),
		}
		if best == nil || c.better(best) {
			best = c
		}
	}
	return best, nil
}

// slotConds collects the unused conditions on field accepted by keep.
func slotConds(conds []cond, used []bool, field string, keep func(cond) bool) ([]boundary.Cond, []int) {
	var bounds []boundary.Cond
	var at []int
	for i, c := range conds {
		if !used[i] && c.field.Name == field && keep(c) {
			bounds = append(bounds, c.boundary())
			at = append(at, i)
		}
	}
	return bounds, at
}

func (s *selector) indexRange(conds []cond) (*candidate, error) {
	var best *candidate
	for _, idx := range s.table.Indexes {
		if !s.allows(idx) {
			continue
		}
		lead, _, _ := s.table.Field(idx.Fields[0])
		used := make([]bool, len(conds))
		bounds, at := slotConds(conds, used, lead.Name, cond.isRange)
		if len(bounds) == 0 {
			continue
		}
		r, err := boundary.Range(nil, lead.Kind, bounds...)
		if err != nil {
			return nil, errors.Wrap(ErrKindMismatch, err.Error())
		}
		for _, i := range at {
			used[i] = true
		}
		c := &candidate{kind: access.KindIndexRange, index: idx, boundary: r, used: used, score: len(bounds)}
		if best == nil || c.better(best) {
			best = c
		}
	}
	return best, nil
}

func (s *selector) indexPrefix(conds []cond) (*candidate, error) {
	var best *candidate
	for _, idx := range s.table.Indexes {
		if !s.allows(idx) {
			continue
		}
		c, err := s.prefixCandidate(conds, idx)
		if err != nil {
			return nil, err
		}
		if c != nil && (best == nil || c.better(best)) {
			best = c
		}
	}
	return best, nil
}

// prefixCandidate binds the leading equalities of idx and then any range
// or prefix conditions on the next field.
func (s *selector) prefixCandidate(conds []cond, idx catalog.Index) (*candidate, error) {
	used := make([]bool, len(conds))
	var eq []codec.Value
	for _, name := range idx.Fields {
		i := eqFor(conds, used, name)
		if i < 0 {
			break
		}
		used[i] = true
		eq = append(eq, conds[i].value)
	}
	if len(eq) == len(idx.Fields) {
		// Fully bound indexes belong to IndexPoint.
		return nil, nil
	}

	next, _, _ := s.table.Field(idx.Fields[len(eq)])
	bounds, at := slotConds(conds, used, next.Name, func(c cond) bool {
		return c.isRange() || c.op == OpPrefix
	})
	hasPrefix := false
	for _, i := range at {
		hasPrefix = hasPrefix || conds[i].op == OpPrefix
	}
	if len(eq) == 0 && !hasPrefix {
		return nil, nil
	}

	r, err := boundary.Range(eq, next.Kind, bounds...)
	if err != nil {
		return nil, errors.Wrap(ErrKindMismatch, err.Error())
	}
	for _, i := range at {
		used[i] = true
	}
	return &candidate{
		kind:     access.KindIndexPrefix,
		index:    idx,
		boundary: r,
		used:     used,
		score:    2*len(eq) + len(bounds),
	}, nil
}

func (s *selector) indexPlan(c *candidate, conds []cond) (*access.Plan, error) {
	residual, err := residualOf(conds, c.used)
	if err != nil {
		return nil, err
	}
	id := s.indexID(c.index)
	var path access.Path
	switch c.kind {
	case access.KindIndexPoint:
		path = access.IndexPoint{Index: id, Primary: s.primary(), Residual: residual}
	case access.KindIndexRange:
		path = access.IndexRange{Index: id, Primary: s.primary(), Residual: residual}
	case access.KindIndexPrefix:
		path = access.IndexPrefix{Index: id, Primary: s.primary(), Residual: residual}
	default:
		panic("planner: unexpected candidate kind " + c.kind.String())
	}
	return &access.Plan{Path: path, Boundary: c.boundary, Shape: s.indexShape(c.index)}, nil
}

// orderIndex returns the index scanned to serve a non primary key
// ordering: the narrowest index leading with the ordering field.
func (s *selector) orderIndex() catalog.Index {
	var best catalog.Index
	found := false
	for _, idx := range s.table.Indexes {
		if idx.Fields[0] != s.order.field {
			continue
		}
		if !found || len(idx.Fields) < len(best.Fields) ||
			(len(idx.Fields) == len(best.Fields) && idx.Name < best.Name) {
			best, found = idx, true
		}
	}
	return best
}

// ordered scans the whole ordering index and leaves every condition to
// the residual filter.
func (s *selector) ordered(conds []cond) (*access.Plan, error) {
	residual, err := residualOf(conds, make([]bool, len(conds)))
	if err != nil {
		return nil, err
	}
	return s.orderedWith(residual), nil
}

func (s *selector) orderedWith(residual keyrange.Matcher) *access.Plan {
	idx := s.orderIndex()
	return &access.Plan{
		Path:     access.IndexRange{Index: s.indexID(idx), Primary: s.primary(), Residual: residual},
		Boundary: keyrange.All(),
		Shape:    s.indexShape(idx),
	}
}

func (s *selector) multi(branches [][]cond) (*access.Plan, error) {
	if !s.order.pkOrdered() {
		anyOf := make(keyrange.AnyOf, 0, len(branches))
		for _, b := range branches {
			fs, err := filtersOf(b, make([]bool, len(b)))
			if err != nil {
				return nil, err
			}
			anyOf = append(anyOf, fs)
		}
		return s.orderedWith(anyOf), nil
	}

	composite := access.Composite{Primary: s.primary(), Branches: make([]access.Branch, 0, len(branches))}
	for _, b := range branches {
		streams, used := s.streams(b)
		if len(streams) == 0 {
			return s.fullScan(branches), nil
		}
		fs, err := filtersOf(b, used)
		if err != nil {
			return nil, err
		}
		composite.Branches = append(composite.Branches, access.Branch{Streams: streams, Filters: fs})
	}
	return &access.Plan{Path: composite, Boundary: keyrange.All(), Shape: s.pkShape()}, nil
}

// streams returns the point streams serving one branch: the primary key
// equality when there is one, otherwise every fully bound index.
func (s *selector) streams(conds []cond) ([]access.Stream, []bool) {
	pk := s.pkSlot()
	for i, c := range conds {
		if c.slot == pk && c.op == OpEq {
			used := make([]bool, len(conds))
			used[i] = true
			return []access.Stream{{Index: s.primary(), Prefix: boundary.Key(c.value)}}, used
		}
	}

	used := make([]bool, len(conds))
	var streams []access.Stream
	for _, idx := range s.table.Indexes {
		vals, u, ok := boundByEq(conds, idx)
		if !ok {
			continue
		}
		for i := range u {
			used[i] = used[i] || u[i]
		}
		streams = append(streams, access.Stream{Index: s.indexID(idx), Prefix: boundary.Key(vals...)})
	}
	return streams, used
}

func (s *selector) fullScan(branches [][]cond) *access.Plan {
	return &access.Plan{
		Path:     access.FullScan{Primary: s.primary(), Matcher: newPredicateMatcher(branches)},
		Boundary: keyrange.All(),
		Shape:    s.pkShape(),
	}
}

// filtersOf turns the unused conditions into raw row filters.
func filtersOf(conds []cond, used []bool) (keyrange.Filters, error) {
	var fs keyrange.Filters
	for i, c := range conds {
		if used[i] {
			continue
		}
		f, err := boundary.Filter(c.slot, c.boundary())
		if err != nil {
			return nil, errors.Wrap(ErrKindMismatch, err.Error())
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// residualOf is filtersOf with a nil Matcher when nothing is left.
func residualOf(conds []cond, used []bool) (keyrange.Matcher, error) {
	fs, err := filtersOf(conds, used)
	if err != nil || len(fs) == 0 {
		return nil, err
	}
	return fs, nil
}
