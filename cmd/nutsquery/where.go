package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/nutsdb/nutsquery"
)

// ops are matched at the first operator position, longest first, so that
// ">=" is not read as ">".
var ops = []struct {
	token string
	op    nutsquery.Op
}{
	{">=", nutsquery.OpGe},
	{"<=", nutsquery.OpLe},
	{"^=", nutsquery.OpPrefix},
	{"=", nutsquery.OpEq},
	{">", nutsquery.OpGt},
	{"<", nutsquery.OpLt},
}

// parseCondition reads "field<op>value", typing value by the field's kind.
// The literal null stands for the null value.
func parseCondition(t *nutsquery.Table, expr string) (nutsquery.Condition, error) {
	for i := 1; i < len(expr); i++ {
		for _, o := range ops {
			if !strings.HasPrefix(expr[i:], o.token) {
				continue
			}
			name := strings.TrimSpace(expr[:i])
			field, _, ok := t.Field(name)
			if !ok {
				return nutsquery.Condition{}, fmt.Errorf("%w: %s.%s", nutsquery.ErrUnknownField, t.Name, name)
			}
			v, err := parseValue(field.Kind, strings.TrimSpace(expr[i+len(o.token):]))
			if err != nil {
				return nutsquery.Condition{}, fmt.Errorf("%s: %w", expr, err)
			}
			return nutsquery.Condition{Field: name, Op: o.op, Value: v}, nil
		}
	}
	return nutsquery.Condition{}, fmt.Errorf("no operator in %q", expr)
}

func parseValue(kind nutsquery.Kind, s string) (nutsquery.Value, error) {
	if s == "null" {
		return nutsquery.Null(), nil
	}
	switch kind {
	case nutsquery.KindBool:
		b, err := strconv.ParseBool(s)
		return nutsquery.Bool(b), err
	case nutsquery.KindInt:
		i, err := strconv.ParseInt(s, 10, 64)
		return nutsquery.Int(i), err
	case nutsquery.KindUint:
		u, err := strconv.ParseUint(s, 10, 64)
		return nutsquery.Uint(u), err
	case nutsquery.KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		return nutsquery.Float(f), err
	case nutsquery.KindBytes:
		b, err := hex.DecodeString(s)
		return nutsquery.Bytes(b), err
	}
	return nutsquery.String(s), nil
}

// parseWhere turns the --where flags into one conjunction and each --or
// group into one more disjunct.
func parseWhere(t *nutsquery.Table, where []string, or []string) (nutsquery.Predicate, error) {
	if len(or) == 0 {
		return parseConjunction(t, where)
	}
	groups := make([][]string, 0, len(or)+1)
	if len(where) > 0 {
		groups = append(groups, where)
	}
	for _, g := range or {
		groups = append(groups, strings.Split(g, ","))
	}
	preds := make([]nutsquery.Predicate, 0, len(groups))
	for _, g := range groups {
		p, err := parseConjunction(t, g)
		if err != nil {
			return nutsquery.Predicate{}, err
		}
		preds = append(preds, p)
	}
	return nutsquery.AnyOf(preds...), nil
}

func parseConjunction(t *nutsquery.Table, exprs []string) (nutsquery.Predicate, error) {
	if len(exprs) == 0 {
		return nutsquery.Predicate{}, nil
	}
	conds := make([]nutsquery.Condition, 0, len(exprs))
	for _, expr := range exprs {
		c, err := parseCondition(t, expr)
		if err != nil {
			return nutsquery.Predicate{}, err
		}
		conds = append(conds, c)
	}
	return nutsquery.Where(conds...), nil
}
