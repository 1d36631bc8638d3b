package priority

import (
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/graph"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// ScoredTask is one ranked output entry.
type ScoredTask struct {
	ID             int        `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	DueDate        *date.Date `json:"due_date" yaml:"due_date"`
	EstimatedHours float64    `json:"estimated_hours" yaml:"estimated_hours"`
	Importance     int        `json:"importance" yaml:"importance"`
	Dependencies   []int      `json:"dependencies" yaml:"dependencies"`
	Score          float64    `json:"score" yaml:"score"`
	Label          Label      `json:"priority_label" yaml:"priority_label"`
	Explanation    string     `json:"explanation" yaml:"explanation"`
	Issues         []string   `json:"issues" yaml:"issues"`

	Blocks      int       `json:"-" yaml:"-"`
	Overdue     bool      `json:"-" yaml:"-"`
	CycleMember bool      `json:"-" yaml:"-"`
	Breakdown   Breakdown `json:"-" yaml:"-"`
}

// Analyze runs the full pipeline over one batch: graph building, cycle
// detection, dependent counting, scoring and ranking. It returns exactly
// one entry per input, ranked.
func Analyze(tasks []task.Task, s Strategy, today date.Date) []ScoredTask {
	g := graph.Build(tasks)
	g.DetectCycles()
	dependents := g.Dependents()

	out := make([]ScoredTask, 0, g.Len())
	for _, n := range g.Nodes() {
		out = append(out, score(n, dependents[n.ID], s, today))
	}

	Rank(out)
	return out
}

func score(n *graph.Node, blocks int, s Strategy, today date.Date) ScoredTask {
	overdue := n.DueDate != nil && n.DueDate.Before(today)

	b := Combine(s,
		UrgencyScore(n.DueDate, today),
		ImportanceScore(n.Importance),
		EffortScore(n.EstimatedHours),
		DependencyScore(blocks),
		overdue,
		n.CycleMember,
	)

	return ScoredTask{
		ID:             n.ID,
		Title:          n.Title,
		DueDate:        n.DueDate,
		EstimatedHours: n.EstimatedHours,
		Importance:     n.Importance,
		Dependencies:   n.Dependencies,
		Score:          Round3(b.Score),
		Label:          LabelFor(b.Score),
		Explanation:    Explain(n, blocks, overdue, s),
		Issues:         n.Issues,
		Blocks:         blocks,
		Overdue:        overdue,
		CycleMember:    n.CycleMember,
		Breakdown:      b,
	}
}
