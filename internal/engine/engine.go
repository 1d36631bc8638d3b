// Package engine ties validation, scoring and the last-analysis store
// together behind the two operations exposed by the CLI and the HTTP API.
package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/ctxlog"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/session"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// DefaultSuggestCount is how many tasks Suggest returns.
const DefaultSuggestCount = 3

// SuggestStrategy is always used for suggestions, whatever the stored batch used.
const SuggestStrategy = priority.SmartBalance

// Request is one analysis call.
type Request struct {
	Strategy string       `json:"strategy,omitempty"`
	Tasks    []task.Input `json:"tasks"`
}

// Result is the ranked answer to a Request.
type Result struct {
	Strategy priority.Strategy     `json:"strategy"`
	Tasks    []priority.ScoredTask `json:"tasks"`
}

// Suggestion is the top of the last batch re-ranked under SuggestStrategy.
type Suggestion struct {
	Strategy  priority.Strategy     `json:"strategy"`
	Suggested []priority.ScoredTask `json:"suggested"`
}

// Recorder observes completed analyses, e.g. to append a history log.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Engine runs analyses. It is safe for concurrent use when its store is.
type Engine struct {
	store        session.Store
	now          func() time.Time
	suggestCount int
	recorder     Recorder
	flight       singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSuggestCount sets how many tasks Suggest returns. Non-positive values are ignored.
func WithSuggestCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.suggestCount = n
		}
	}
}

// WithRecorder registers an observer for completed analyses.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New creates an Engine over store.
func New(store session.Store, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		now:          time.Now,
		suggestCount: DefaultSuggestCount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current date according to the engine's clock.
func (e *Engine) Today() date.Date {
	return date.FromTime(e.now())
}

// Analyze validates the request, ranks its tasks and replaces the stored
// batch. Validation problems come back as a *clierr.Error whose details
// map field paths to messages.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	res, err := e.Rank(req)
	if err != nil {
		return nil, err
	}

	snap := &session.Snapshot{Strategy: res.Strategy, Tasks: req.Tasks, AnalyzedAt: e.now()}
	if err := e.store.Save(ctx, snap); err != nil {
		logger.Warn("Failed to store analyzed batch.", "error", err)
	}
	if e.recorder != nil {
		if err := e.recorder.Record(ctx, res); err != nil {
			logger.Warn("Failed to record analysis.", "error", err)
		}
	}

	logger.Debug("Analyzed batch.",
		"strategy", res.Strategy,
		"tasks", len(res.Tasks),
		"with_issues", countWithIssues(res.Tasks),
	)
	return res, nil
}

// Rank validates and ranks the request without touching the store or the
// recorder.
func (e *Engine) Rank(req Request) (*Result, error) {
	errs := &task.ValidationErrors{}
	strategy, err := priority.ParseStrategy(req.Strategy)
	if err != nil {
		errs.Add("strategy", err.Error())
	}
	errs.Merge(task.Validate(req.Tasks))
	if errs.HasErrors() {
		return nil, errs.CLIError()
	}

	return &Result{
		Strategy: strategy,
		Tasks:    priority.Analyze(task.NormalizeAll(req.Tasks), strategy, e.Today()),
	}, nil
}

// Suggest re-ranks the stored batch under SuggestStrategy and returns its
// top entries. It fails with NO_PRIOR_ANALYSIS when nothing, or an empty
// batch, was stored. Concurrent calls share one computation, so callers
// must treat the result as read-only.
func (e *Engine) Suggest(ctx context.Context) (*Suggestion, error) {
	// Coalesced callers share this load, so it ignores cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := e.flight.Do("suggest", func() (any, error) {
		return e.suggest(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Suggestion), nil
}

func (e *Engine) suggest(ctx context.Context) (*Suggestion, error) {
	snap, err := e.store.Load(ctx)
	if errors.Is(err, session.ErrNoAnalysis) || (err == nil && len(snap.Tasks) == 0) {
		return nil, clierr.New(clierr.NoPriorAnalysis, "No analyzed tasks found.")
	}
	if err != nil {
		return nil, clierr.Newf(clierr.InternalError, "loading last analysis: %v", err)
	}

	scored := priority.Analyze(task.NormalizeAll(snap.Tasks), SuggestStrategy, e.Today())
	ctxlog.FromContext(ctx).Debug("Suggested tasks.", "batch", len(snap.Tasks), "analyzed_at", snap.AnalyzedAt)

	return &Suggestion{
		Strategy:  SuggestStrategy,
		Suggested: priority.Top(scored, e.suggestCount),
	}, nil
}

func countWithIssues(tasks []priority.ScoredTask) int {
	n := 0
	for _, t := range tasks {
		if len(t.Issues) > 0 {
			n++
		}
	}
	return n
}
