package report

import (
	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
)

const (
	fieldLabel = "label"
	fieldDue   = "due"

	dueOverdue  = "overdue"
	dueThisWeek = "this week"
	dueLater    = "later"
	dueNone     = "no due date"

	daysPerWeek = 7
)

// Grouped holds ranked tasks split by a field.
type Grouped struct {
	Field  string  `json:"field"`
	Groups []Group `json:"groups"`
}

// Group is one bucket of a grouped view. Tasks keep their rank order.
type Group struct {
	Key   string                `json:"key"`
	Total int                   `json:"total"`
	Tasks []priority.ScoredTask `json:"tasks"`
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{fieldLabel, fieldDue}
}

// GroupBy groups tasks by the given field. Empty groups are omitted.
func GroupBy(tasks []priority.ScoredTask, field string, today date.Date) (Grouped, error) {
	var keys []string
	var keyOf func(priority.ScoredTask) string

	switch field {
	case fieldLabel:
		for _, l := range priority.Labels() {
			keys = append(keys, string(l))
		}
		keyOf = func(t priority.ScoredTask) string { return string(t.Label) }
	case fieldDue:
		keys = []string{dueOverdue, dueThisWeek, dueLater, dueNone}
		keyOf = func(t priority.ScoredTask) string { return dueBucket(t, today) }
	default:
		return Grouped{}, clierr.Newf(clierr.InvalidGroupBy, "invalid group-by field %q", field).
			WithDetails(map[string]any{"field": field, "valid": ValidGroupByFields()})
	}

	buckets := make(map[string][]priority.ScoredTask, len(keys))
	for _, t := range tasks {
		k := keyOf(t)
		buckets[k] = append(buckets[k], t)
	}

	g := Grouped{Field: field, Groups: make([]Group, 0, len(keys))}
	for _, k := range keys {
		if len(buckets[k]) == 0 {
			continue
		}
		g.Groups = append(g.Groups, Group{Key: k, Total: len(buckets[k]), Tasks: buckets[k]})
	}
	return g, nil
}

func dueBucket(t priority.ScoredTask, today date.Date) string {
	switch {
	case t.DueDate == nil:
		return dueNone
	case t.DueDate.Before(today):
		return dueOverdue
	case today.DaysUntil(*t.DueDate) <= daysPerWeek:
		return dueThisWeek
	default:
		return dueLater
	}
}
