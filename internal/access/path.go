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

// Package access holds the executable form of a query: the access path
// variants and the Plan that carries one of them. Everything in a Plan is
// raw bytes, so execution never sees a typed value.
package access

import (
	"fmt"

	"github.com/nutsdb/nutsquery/internal/keyrange"
)

// Kind names an access path variant.
type Kind uint8

const (
	KindPKPoint Kind = iota + 1
	KindPKRange
	KindIndexPoint
	KindIndexRange
	KindIndexPrefix
	KindComposite
	KindFullScan
)

var kindNames = map[Kind]string{
	KindPKPoint:     "pk_point",
	KindPKRange:     "pk_range",
	KindIndexPoint:  "index_point",
	KindIndexRange:  "index_range",
	KindIndexPrefix: "index_prefix",
	KindComposite:   "composite",
	KindFullScan:    "full_scan",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("path(%d)", uint8(k))
}

// Kinds returns every variant in priority order.
func Kinds() []Kind {
	return []Kind{KindPKPoint, KindPKRange, KindIndexPoint, KindIndexRange, KindIndexPrefix, KindComposite, KindFullScan}
}

// Path is one access path variant. The set is closed: only the types in
// this package implement it.
type Path interface {
	Kind() Kind

	// SortIndex is the index whose keys order the output and anchor tokens.
	SortIndex() string

	isPath()
}

// PKPoint reads at most one row by primary key.
type PKPoint struct {
	Primary  string
	Residual keyrange.Matcher
}

// PKRange scans a primary key range.
type PKRange struct {
	Primary  string
	Residual keyrange.Matcher
}

// IndexPoint reads the entries of a secondary index whose every field is
// bound by equality.
type IndexPoint struct {
	Index    string
	Primary  string
	Residual keyrange.Matcher
}

// IndexRange scans a range of a secondary index.
type IndexRange struct {
	Index    string
	Primary  string
	Residual keyrange.Matcher
}

// IndexPrefix scans the entries of a multi-field index sharing bound
// leading fields, or a string prefix of the leading field.
type IndexPrefix struct {
	Index    string
	Primary  string
	Residual keyrange.Matcher
}

// Composite unions branches, each the intersection of point streams.
// Output is in primary key order.
type Composite struct {
	Primary  string
	Branches []Branch
}

// Branch is one disjunct of a Composite path.
type Branch struct {
	Streams []Stream
	Filters keyrange.Filters
}

// Stream yields primary keys in ascending order. When Index is the
// primary index, Prefix is the single primary key to look up. Otherwise
// every entry of Index starting with Prefix is read and its suffix is the
// primary key.
type Stream struct {
	Index  string
	Prefix []byte
}

// FullScan reads every row and evaluates Matcher on it.
type FullScan struct {
	Primary string
	Matcher keyrange.Matcher
}

func (PKPoint) Kind() Kind     { return KindPKPoint }
func (PKRange) Kind() Kind     { return KindPKRange }
func (IndexPoint) Kind() Kind  { return KindIndexPoint }
func (IndexRange) Kind() Kind  { return KindIndexRange }
func (IndexPrefix) Kind() Kind { return KindIndexPrefix }
func (Composite) Kind() Kind   { return KindComposite }
func (FullScan) Kind() Kind    { return KindFullScan }

func (p PKPoint) SortIndex() string     { return p.Primary }
func (p PKRange) SortIndex() string     { return p.Primary }
func (p IndexPoint) SortIndex() string  { return p.Index }
func (p IndexRange) SortIndex() string  { return p.Index }
func (p IndexPrefix) SortIndex() string { return p.Index }
func (p Composite) SortIndex() string   { return p.Primary }
func (p FullScan) SortIndex() string    { return p.Primary }

func (PKPoint) isPath()     {}
func (PKRange) isPath()     {}
func (IndexPoint) isPath()  {}
func (IndexRange) isPath()  {}
func (IndexPrefix) isPath() {}
func (Composite) isPath()   {}
func (FullScan) isPath()    {}

// IsPrimary reports whether s reads the primary index.
func (s Stream) IsPrimary(primary string) bool {
	return s.Index == primary
}
