package planner

import (
	"fmt"
	"strings"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/keyrange"
)

// Explain renders plan for humans, one property per line.
func (p *Planner) Explain(plan *access.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "table:     %s\n", plan.Table)
	fmt.Fprintf(&b, "path:      %s\n", plan.Path.Kind())
	fmt.Fprintf(&b, "index:     %s\n", plan.SortIndex())
	fmt.Fprintf(&b, "direction: %s\n", plan.Direction)
	fmt.Fprintf(&b, "range:     %s\n", plan.Boundary)
	fmt.Fprintf(&b, "key:       %s\n", plan.Shape)

	switch path := plan.Path.(type) {
	case access.PKPoint:
		writeResidual(&b, path.Residual)
	case access.PKRange:
		writeResidual(&b, path.Residual)
	case access.IndexPoint:
		writeResidual(&b, path.Residual)
	case access.IndexRange:
		writeResidual(&b, path.Residual)
	case access.IndexPrefix:
		writeResidual(&b, path.Residual)
	case access.Composite:
		for i, branch := range path.Branches {
			streams := make([]string, len(branch.Streams))
			for j, s := range branch.Streams {
				streams[j] = fmt.Sprintf("%s[%x]", s.Index, s.Prefix)
			}
			fmt.Fprintf(&b, "branch %d:  %s", i, strings.Join(streams, " & "))
			if len(branch.Filters) > 0 {
				fmt.Fprintf(&b, " where %s", branch.Filters)
			}
			b.WriteByte('\n')
		}
	case access.FullScan:
		fmt.Fprintf(&b, "match:     %v\n", path.Matcher)
	}

	fmt.Fprintf(&b, "window:    offset=%d limit=%d\n", plan.Offset, plan.Limit)
	fmt.Fprintf(&b, "signature: %s", plan.Signature)
	return b.String()
}

func writeResidual(b *strings.Builder, m keyrange.Matcher) {
	if m == nil {
		return
	}
	fmt.Fprintf(b, "residual:  %v\n", m)
}
