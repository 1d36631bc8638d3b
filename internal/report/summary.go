package report

import "github.com/twiced-technology-gmbh/taskrank/internal/priority"

// LabelCount is the number of tasks carrying one label.
type LabelCount struct {
	Label priority.Label `json:"label"`
	Count int            `json:"count"`
}

// Summary holds aggregate metrics for one ranked batch.
type Summary struct {
	Strategy   priority.Strategy `json:"strategy"`
	Total      int               `json:"total"`
	Labels     []LabelCount      `json:"labels"`
	Overdue    int               `json:"overdue"`
	InCycle    int               `json:"in_cycle"`
	WithIssues int               `json:"with_issues"`
	MeanScore  float64           `json:"mean_score"`
	TopID      *int              `json:"top_id"`
}

// Summarize computes a Summary over ranked tasks.
func Summarize(tasks []priority.ScoredTask, s priority.Strategy) Summary {
	counts := make(map[priority.Label]int, len(priority.Labels()))
	sum := Summary{Strategy: s, Total: len(tasks)}

	var total float64
	for _, t := range tasks {
		counts[t.Label]++
		total += t.Score
		if t.Overdue {
			sum.Overdue++
		}
		if t.CycleMember {
			sum.InCycle++
		}
		if len(t.Issues) > 0 {
			sum.WithIssues++
		}
	}

	for _, l := range priority.Labels() {
		sum.Labels = append(sum.Labels, LabelCount{Label: l, Count: counts[l]})
	}
	if len(tasks) > 0 {
		sum.MeanScore = priority.Round3(total / float64(len(tasks)))
		id := tasks[0].ID
		sum.TopID = &id
	}
	return sum
}
