// Package priority scores, explains and ranks tasks under a weighting strategy.
package priority

import (
	"strings"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
)

// Strategy selects how the four sub-scores are weighted.
type Strategy string

// Supported strategies.
const (
	FastestWins    Strategy = "fastest_wins"
	HighImpact     Strategy = "high_impact"
	DeadlineDriven Strategy = "deadline_driven"
	SmartBalance   Strategy = "smart_balance"
)

// DefaultStrategy is used when a request names none.
const DefaultStrategy = SmartBalance

// Weights is a linear weighting over the four sub-scores.
type Weights struct {
	Urgency    float64 `json:"urgency" yaml:"urgency"`
	Importance float64 `json:"importance" yaml:"importance"`
	Effort     float64 `json:"effort" yaml:"effort"`
	Dependency float64 `json:"dependency" yaml:"dependency"`
}

// weighFunc sums the weighted sub-scores in a strategy's own term order.
// Products are converted explicitly so they are never fused into the add.
type weighFunc func(w Weights, urgency, importance, effort, dependency float64) float64

func weighEffortFirst(w Weights, urgency, importance, effort, dependency float64) float64 {
	return float64(w.Effort*effort) + float64(w.Urgency*urgency) +
		float64(w.Importance*importance) + float64(w.Dependency*dependency)
}

// weighImportanceFirst leaves effort out entirely.
func weighImportanceFirst(w Weights, urgency, importance, _, dependency float64) float64 {
	return float64(w.Importance*importance) + float64(w.Urgency*urgency) +
		float64(w.Dependency*dependency)
}

func weighUrgencyFirst(w Weights, urgency, importance, effort, dependency float64) float64 {
	return float64(w.Urgency*urgency) + float64(w.Importance*importance) +
		float64(w.Effort*effort) + float64(w.Dependency*dependency)
}

type strategyInfo struct {
	weights Weights
	weigh   weighFunc
	title   string
	focus   string
}

var strategies = map[Strategy]strategyInfo{
	FastestWins: {
		weights: Weights{Urgency: 0.2, Importance: 0.2, Effort: 0.5, Dependency: 0.1},
		weigh:   weighEffortFirst,
		title:   "Fastest Wins",
		focus:   "favoring low effort",
	},
	HighImpact: {
		weights: Weights{Urgency: 0.2, Importance: 0.6, Effort: 0, Dependency: 0.2},
		weigh:   weighImportanceFirst,
		title:   "High Impact",
		focus:   "favoring importance",
	},
	DeadlineDriven: {
		weights: Weights{Urgency: 0.6, Importance: 0.2, Effort: 0.1, Dependency: 0.1},
		weigh:   weighUrgencyFirst,
		title:   "Deadline Driven",
		focus:   "favoring due date",
	},
	SmartBalance: {
		weights: Weights{Urgency: 0.35, Importance: 0.35, Effort: 0.15, Dependency: 0.15},
		weigh:   weighUrgencyFirst,
		title:   "Smart Balance",
		focus:   "balancing all factors",
	},
}

// Strategies returns every strategy in display order.
func Strategies() []Strategy {
	return []Strategy{FastestWins, HighImpact, DeadlineDriven, SmartBalance}
}

// StrategyNames returns the strategy identifiers as strings.
func StrategyNames() []string {
	all := Strategies()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return names
}

// ParseStrategy validates a strategy name. An empty name selects the default.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultStrategy, nil
	}
	s := Strategy(name)
	if !s.Valid() {
		return "", clierr.Newf(clierr.InvalidStrategy, "%q is not a valid choice.", name).
			WithDetails(map[string]any{
				"strategy": name,
				"valid":    StrategyNames(),
			})
	}
	return s, nil
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := strategies[s]
	return ok
}

// info falls back to the default strategy for unknown values.
func (s Strategy) info() strategyInfo {
	if i, ok := strategies[s]; ok {
		return i
	}
	return strategies[DefaultStrategy]
}

// Weights returns the weighting of s.
func (s Strategy) Weights() Weights { return s.info().weights }

// Title returns the display name, e.g. "Fastest Wins".
func (s Strategy) Title() string { return s.info().title }

// Focus returns a short description of what s favors.
func (s Strategy) Focus() string { return s.info().focus }

// Sentence is the explanation clause naming the strategy.
func (s Strategy) Sentence() string {
	i := s.info()
	return "Strategy: " + i.title + " (" + i.focus + ")."
}

// Next cycles through Strategies in order.
func (s Strategy) Next() Strategy {
	all := Strategies()
	for i, candidate := range all {
		if candidate == s {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}
