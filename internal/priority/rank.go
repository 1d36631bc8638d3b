package priority

import (
	"sort"

	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

// Rank sorts in place: unrounded score descending, then earlier due date
// (missing dates last), then higher importance. Remaining ties keep their
// relative order.
func Rank(tasks []ScoredTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return rankLess(&tasks[i], &tasks[j])
	})
}

func rankLess(a, b *ScoredTask) bool {
	if a.Breakdown.Score != b.Breakdown.Score {
		return a.Breakdown.Score > b.Breakdown.Score
	}
	if c := compareDue(a.DueDate, b.DueDate); c != 0 {
		return c < 0
	}
	return a.Importance > b.Importance
}

func compareDue(a, b *date.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1 // nil sorts last
	case b == nil:
		return -1
	}
	return a.Compare(b.Time)
}

// Top returns at most n leading entries. A non-positive n returns all.
func Top(tasks []ScoredTask, n int) []ScoredTask {
	if n <= 0 || n >= len(tasks) {
		return tasks
	}
	return tasks[:n]
}
