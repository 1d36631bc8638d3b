package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
)

// DefaultWrap is the word-wrap width for rendered reports.
const DefaultWrap = 80

// Markdown builds the explain report for one scored task.
func Markdown(t priority.ScoredTask, s priority.Strategy) string {
	var b strings.Builder
	b.Grow(1024) //nolint:mnd // typical report size

	fmt.Fprintf(&b, "# #%d %s\n\n", t.ID, t.Title)
	fmt.Fprintf(&b, "**%s** priority, score **%.3f** under *%s*.\n\n", t.Label, t.Score, s.Title())
	fmt.Fprintf(&b, "> %s\n\n", t.Explanation)

	b.WriteString("## Inputs\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	due := "none"
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	fmt.Fprintf(&b, "| Due date | %s |\n", due)
	fmt.Fprintf(&b, "| Estimated hours | %s |\n", priority.FormatHours(t.EstimatedHours))
	fmt.Fprintf(&b, "| Importance | %d/10 |\n", t.Importance)
	fmt.Fprintf(&b, "| Dependencies | %s |\n", formatIDs(t.Dependencies))
	fmt.Fprintf(&b, "| Blocks | %d |\n\n", t.Blocks)

	bd := t.Breakdown
	w := bd.Weights
	b.WriteString("## Score\n\n")
	b.WriteString("| Factor | Sub-score | Weight | Contribution |\n|---|---|---|---|\n")
	writeFactor(&b, "Urgency", bd.Urgency, w.Urgency)
	writeFactor(&b, "Importance", bd.Importance, w.Importance)
	writeFactor(&b, "Effort", bd.Effort, w.Effort)
	writeFactor(&b, "Dependency", bd.Dependency, w.Dependency)
	fmt.Fprintf(&b, "| **Weighted** | | | **%.3f** |\n\n", bd.Weighted)

	if bd.OverdueBonus != 0 || bd.CyclePenalty != 0 {
		b.WriteString("## Adjustments\n\n")
		if bd.OverdueBonus != 0 {
			fmt.Fprintf(&b, "- Overdue: +%.1f\n", bd.OverdueBonus)
		}
		if bd.CyclePenalty != 0 {
			fmt.Fprintf(&b, "- Circular dependency: -%.1f\n", bd.CyclePenalty)
		}
		b.WriteString("\n")
	}

	if len(t.Issues) > 0 {
		b.WriteString("## Issues\n\n")
		for _, issue := range t.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	return b.String()
}

// Render formats markdown for the terminal. Without color the notty style
// is used, which emits no escape sequences.
func Render(md string, color bool, width int) (string, error) {
	style := "dark"
	if !color {
		style = "notty"
	}
	if width <= 0 {
		width = DefaultWrap
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func writeFactor(b *strings.Builder, name string, sub, weight float64) {
	fmt.Fprintf(b, "| %s | %.3f | %.2f | %.3f |\n", name, sub, weight, sub*weight)
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}
