package planner

import (
	"bytes"
	"strings"

	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/tuple"
)

// predicateMatcher evaluates a resolved predicate on decoded rows. Full
// scans use it; every other path filters on raw slots.
type predicateMatcher struct {
	branches [][]cond
}

func newPredicateMatcher(branches [][]cond) *predicateMatcher {
	return &predicateMatcher{branches: branches}
}

// Match implements keyrange.Matcher.
func (m *predicateMatcher) Match(row []byte) (bool, error) {
	values, err := codec.DecodeTuple(row)
	if err != nil {
		return false, err
	}
	for _, branch := range m.branches {
		ok, err := matchBranch(branch, values)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func matchBranch(branch []cond, values []codec.Value) (bool, error) {
	for _, c := range branch {
		if c.slot >= len(values) {
			return false, tuple.ErrSlotOutOfRange
		}
		if !evaluate(c, values[c.slot]) {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(c cond, v codec.Value) bool {
	if c.value.IsNull() {
		return v.IsNull()
	}
	if v.IsNull() {
		return false
	}
	if c.op == OpPrefix {
		switch v.Kind() {
		case codec.KindString:
			return strings.HasPrefix(v.AsString(), c.value.AsString())
		case codec.KindBytes:
			return bytes.HasPrefix(v.AsBytes(), c.value.AsBytes())
		}
		return false
	}
	cmp := codec.Compare(v, c.value)
	switch c.op {
	case OpEq:
		return cmp == 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

func (m *predicateMatcher) String() string {
	if len(m.branches) == 0 {
		return "FALSE"
	}
	parts := make([]string, len(m.branches))
	for i, b := range m.branches {
		conds := make([]string, len(b))
		for j, c := range b {
			conds[j] = c.field.Name + " " + c.op.String() + " " + c.value.String()
		}
		parts[i] = strings.Join(conds, " AND ")
		if len(b) == 0 {
			parts[i] = "TRUE"
		}
	}
	return strings.Join(parts, " OR ")
}
