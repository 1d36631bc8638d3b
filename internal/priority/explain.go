package priority

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/taskrank/internal/graph"
)

// Explanation clauses.
const (
	OverdueClause = "Overdue task (higher urgency)."
	CycleClause   = "Part of a circular dependency (slightly penalized)."
)

// Explain joins the human-readable clauses for one node.
func Explain(n *graph.Node, blocks int, overdue bool, s Strategy) string {
	parts := make([]string, 0, 6) //nolint:mnd // at most six clauses

	switch {
	case overdue:
		parts = append(parts, OverdueClause)
	case n.DueDate != nil:
		parts = append(parts, fmt.Sprintf("Due on %s.", n.DueDate))
	}

	parts = append(parts,
		fmt.Sprintf("Importance: %d/10.", n.Importance),
		fmt.Sprintf("Estimated effort: %sh.", FormatHours(n.EstimatedHours)),
	)

	if blocks > 0 {
		parts = append(parts, fmt.Sprintf("Blocks %d other task(s).", blocks))
	}

	parts = append(parts, s.Sentence())

	if n.CycleMember {
		parts = append(parts, CycleClause)
	}

	return strings.Join(parts, " ")
}

// FormatHours prints hours with at least one decimal place: 2 -> "2.0", 1.25 -> "1.25".
// Magnitudes below 1e-4 or from 1e16 up use exponent form: "1e+16", "1.5e-05".
func FormatHours(h float64) string {
	if a := math.Abs(h); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(h, 'e', -1, 64)
	}
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
