package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
)

// RankedCompact renders ranked tasks in one-line-per-record compact format.
func RankedCompact(w io.Writer, tasks []priority.ScoredTask) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single scored task with its explanation.
func TaskDetailCompact(w io.Writer, t priority.ScoredTask) {
	fmt.Fprintln(w, formatTaskLine(t))
	fmt.Fprintln(w, "  "+t.Explanation)
	for _, issue := range t.Issues {
		fmt.Fprintln(w, "  ! "+issue)
	}
}

// SummaryCompact renders aggregate metrics in compact format.
func SummaryCompact(w io.Writer, s report.Summary) {
	fmt.Fprintf(w, "%s (%d tasks)\n", s.Strategy, s.Total)

	parts := make([]string, 0, len(s.Labels))
	for _, lc := range s.Labels {
		parts = append(parts, string(lc.Label)+"="+strconv.Itoa(lc.Count))
	}
	fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))

	var annotations []string
	if s.Overdue > 0 {
		annotations = append(annotations, strconv.Itoa(s.Overdue)+" overdue")
	}
	if s.InCycle > 0 {
		annotations = append(annotations, strconv.Itoa(s.InCycle)+" in cycle")
	}
	if s.WithIssues > 0 {
		annotations = append(annotations, strconv.Itoa(s.WithIssues)+" with issues")
	}
	if len(annotations) > 0 {
		fmt.Fprintln(w, strings.Join(annotations, ", "))
	}
}

// GroupedCompact renders a grouped view in compact format.
func GroupedCompact(w io.Writer, g report.Grouped) {
	for _, grp := range g.Groups {
		fmt.Fprintf(w, "%s (%d)\n", grp.Key, grp.Total)
		for _, t := range grp.Tasks {
			fmt.Fprintln(w, "  "+formatTaskLine(t))
		}
	}
}

// formatTaskLine builds the one-line representation of a scored task.
func formatTaskLine(t priority.ScoredTask) string {
	line := "#" + strconv.Itoa(t.ID) + " [" + string(t.Label) + " " +
		strconv.FormatFloat(t.Score, 'f', 3, 64) + "] " + t.Title

	if t.DueDate != nil {
		line += " due:" + t.DueDate.String()
	}
	if len(t.Dependencies) > 0 {
		deps := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			deps[i] = strconv.Itoa(d)
		}
		line += " deps:" + strings.Join(deps, ",")
	}
	if n := len(t.Issues); n > 0 {
		line += " issues:" + strconv.Itoa(n)
	}
	return line
}
