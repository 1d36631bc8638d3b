package priority

import (
	"math"
	"strings"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

// Scoring constants.
const (
	NoDueUrgency       = 0.3
	OverdueUrgency     = 1.2
	MinUpcomingUrgency = 0.4
	UrgencyHorizon     = 30.0

	EffortHalfLife = 4.0

	BlockingBase    = 0.3
	BlockingPerTask = 0.1

	OverdueBonus = 0.1
	CyclePenalty = 0.1

	MinScore = 0.0
	MaxScore = 1.5

	HighThreshold   = 0.9
	MediumThreshold = 0.6
)

// UrgencyScore rates how soon the task is due relative to today.
func UrgencyScore(due *date.Date, today date.Date) float64 {
	if due == nil {
		return NoDueUrgency
	}
	days := today.DaysUntil(*due)
	if days < 0 {
		return OverdueUrgency
	}
	return math.Max(MinUpcomingUrgency, 1.0-float64(days)/UrgencyHorizon)
}

// ImportanceScore maps importance 1..10 onto 0.1..1.0, clamping out-of-range values.
func ImportanceScore(importance int) float64 {
	return float64(min(max(importance, 1), 10)) / 10.0 //nolint:mnd // importance scale
}

// EffortScore favors small tasks: 1.0 at zero hours, 0.5 at four.
func EffortScore(hours float64) float64 {
	if hours <= 0 {
		hours = 1.0
	}
	return 1.0 / (1.0 + hours/EffortHalfLife)
}

// DependencyScore rewards tasks that block others.
func DependencyScore(dependents int) float64 {
	if dependents <= 0 {
		return 0
	}
	return math.Min(1.0, BlockingBase+float64(BlockingPerTask*float64(dependents)))
}

// Breakdown records every step of one task's score.
type Breakdown struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`

	Weights  Weights `json:"weights"`
	Weighted float64 `json:"weighted"`

	OverdueBonus float64 `json:"overdue_bonus"`
	CyclePenalty float64 `json:"cycle_penalty"`

	// Score is clamped to [MinScore, MaxScore] and not rounded.
	Score float64 `json:"score"`
}

// Combine weights the sub-scores under s and applies the adjustments.
func Combine(s Strategy, urgency, importance, effort, dependency float64, overdue, inCycle bool) Breakdown {
	info := s.info()
	b := Breakdown{
		Urgency:    urgency,
		Importance: importance,
		Effort:     effort,
		Dependency: dependency,
		Weights:    info.weights,
		Weighted:   info.weigh(info.weights, urgency, importance, effort, dependency),
	}

	score := b.Weighted
	if overdue {
		b.OverdueBonus = OverdueBonus
		score += OverdueBonus
	}
	if inCycle {
		b.CyclePenalty = CyclePenalty
		score -= CyclePenalty
	}
	b.Score = math.Max(MinScore, math.Min(score, MaxScore))
	return b
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000 //nolint:mnd // three decimals
}

// Label is a coarse priority bucket.
type Label string

// Priority labels.
const (
	High   Label = "High"
	Medium Label = "Medium"
	Low    Label = "Low"
)

// Labels returns every label from highest to lowest.
func Labels() []Label {
	return []Label{High, Medium, Low}
}

// LabelFor buckets an unrounded score.
func LabelFor(score float64) Label {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// ParseLabel matches a label case-insensitively.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", clierr.Newf(clierr.InvalidLabel, "invalid priority label %q", s).
		WithDetails(map[string]any{"label": s, "valid": []Label{High, Medium, Low}})
}
