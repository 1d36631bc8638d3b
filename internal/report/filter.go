// Package report slices, groups and summarizes ranked results and keeps the
// analysis history log.
package report

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
)

// FilterOptions controls which ranked tasks are shown.
type FilterOptions struct {
	Labels     []priority.Label
	MinScore   float64
	IssuesOnly bool
	Search     string
	Limit      int
}

// Filter returns the tasks matching opts, keeping rank order. A zero
// FilterOptions keeps everything.
func Filter(tasks []priority.ScoredTask, opts FilterOptions) []priority.ScoredTask {
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	var out []priority.ScoredTask
	for _, t := range tasks {
		if len(opts.Labels) > 0 && !slices.Contains(opts.Labels, t.Label) {
			continue
		}
		if t.Score < opts.MinScore {
			continue
		}
		if opts.IssuesOnly && len(t.Issues) == 0 {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		out = append(out, t)
	}

	if opts.Limit > 0 {
		out = priority.Top(out, opts.Limit)
	}
	return out
}
