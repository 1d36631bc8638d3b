package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/session"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func newEngine(opts ...Option) (*Engine, *session.Memory) {
	store := session.NewMemory()
	return New(store, append([]Option{WithClock(fixedClock)}, opts...)...), store
}

func titled(titles ...string) []task.Input {
	out := make([]task.Input, len(titles))
	for i, title := range titles {
		out[i] = task.Input{Title: title}
	}
	return out
}

type failingStore struct{ session.Memory }

func (f *failingStore) Save(context.Context, *session.Snapshot) error {
	return errors.New("disk full")
}

type recorder struct {
	mu      sync.Mutex
	results []*Result
}

func (r *recorder) Record(_ context.Context, res *Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func TestAnalyze_DefaultStrategy(t *testing.T) {
	e, _ := newEngine()

	res, err := e.Analyze(context.Background(), Request{Tasks: titled("a", "b")})
	require.NoError(t, err)
	assert.Equal(t, priority.SmartBalance, res.Strategy)
	assert.Len(t, res.Tasks, 2)
}

func TestAnalyze_EchoesStrategy(t *testing.T) {
	e, _ := newEngine()

	res, err := e.Analyze(context.Background(), Request{Strategy: "fastest_wins", Tasks: titled("a")})
	require.NoError(t, err)
	assert.Equal(t, priority.FastestWins, res.Strategy)
	assert.Contains(t, res.Tasks[0].Explanation, "Fastest Wins")
}

func TestAnalyze_RejectsInvalidRequest(t *testing.T) {
	e, store := newEngine()

	_, err := e.Analyze(context.Background(), Request{
		Strategy: "chaos",
		Tasks:    []task.Input{{Title: ""}, {Title: "ok", Importance: task.IntPtr(11)}},
	})

	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidStrategy, ce.Code)
	assert.Equal(t, []string{`"chaos" is not a valid choice.`}, ce.Details["strategy"])
	assert.Contains(t, ce.Details, "tasks[0].title")
	assert.Contains(t, ce.Details, "tasks[1].importance")

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNoAnalysis, "rejected batches are not stored")
}

func TestAnalyze_StoresBatch(t *testing.T) {
	e, store := newEngine()

	_, err := e.Analyze(context.Background(), Request{Strategy: "high_impact", Tasks: titled("a")})
	require.NoError(t, err)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, priority.HighImpact, snap.Strategy)
	assert.Equal(t, titled("a"), snap.Tasks)
	assert.Equal(t, fixedClock(), snap.AnalyzedAt)
}

func TestAnalyze_StoreFailureIsNotFatal(t *testing.T) {
	e := New(&failingStore{}, WithClock(fixedClock))

	res, err := e.Analyze(context.Background(), Request{Tasks: titled("a")})
	require.NoError(t, err)
	assert.Len(t, res.Tasks, 1)
}

func TestAnalyze_Records(t *testing.T) {
	rec := &recorder{}
	e, _ := newEngine(WithRecorder(rec))

	_, err := e.Analyze(context.Background(), Request{Tasks: titled("a")})
	require.NoError(t, err)
	require.Len(t, rec.results, 1)
	assert.Equal(t, priority.SmartBalance, rec.results[0].Strategy)
}

func TestAnalyze_EmptyBatch(t *testing.T) {
	e, _ := newEngine()

	res, err := e.Analyze(context.Background(), Request{Tasks: []task.Input{}})
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
}

func TestSuggest_NoPriorAnalysis(t *testing.T) {
	e, _ := newEngine()

	_, err := e.Suggest(context.Background())

	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.NoPriorAnalysis, ce.Code)
}

func TestSuggest_EmptyStoredBatch(t *testing.T) {
	e, _ := newEngine()
	_, err := e.Analyze(context.Background(), Request{Tasks: []task.Input{}})
	require.NoError(t, err)

	_, err = e.Suggest(context.Background())

	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.NoPriorAnalysis, ce.Code)
}

func TestSuggest_ForcesSmartBalanceTopThree(t *testing.T) {
	e, _ := newEngine()

	inputs := titled("a", "b", "c", "d", "e")
	inputs[3].Importance = task.IntPtr(10)
	inputs[4].EstimatedHours = task.FloatPtr(0.5)
	_, err := e.Analyze(context.Background(), Request{Strategy: "fastest_wins", Tasks: inputs})
	require.NoError(t, err)

	s, err := e.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, priority.SmartBalance, s.Strategy)
	require.Len(t, s.Suggested, 3)
	assert.Equal(t, "d", s.Suggested[0].Title)
	for _, st := range s.Suggested {
		assert.Contains(t, st.Explanation, "Smart Balance")
	}
}

func TestSuggest_Count(t *testing.T) {
	e, _ := newEngine(WithSuggestCount(1))
	_, err := e.Analyze(context.Background(), Request{Tasks: titled("a", "b")})
	require.NoError(t, err)

	s, err := e.Suggest(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Suggested, 1)
}

func TestSuggest_FewerThanCount(t *testing.T) {
	e, _ := newEngine()
	_, err := e.Analyze(context.Background(), Request{Tasks: titled("a")})
	require.NoError(t, err)

	s, err := e.Suggest(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Suggested, 1)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e, _ := newEngine()
	_, err := e.Analyze(context.Background(), Request{Tasks: titled("seed")})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, err := e.Analyze(context.Background(), Request{Tasks: titled("a", "b")})
				assert.NoError(t, err)
				return
			}
			_, err := e.Suggest(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestToday(t *testing.T) {
	e, _ := newEngine()
	assert.Equal(t, "2025-03-10", e.Today().String())
}

func TestRank_DoesNotStore(t *testing.T) {
	e, store := newEngine()

	res, err := e.Rank(Request{Strategy: "high_impact", Tasks: titled("a", "b")})
	require.NoError(t, err)
	assert.Equal(t, priority.HighImpact, res.Strategy)
	assert.Len(t, res.Tasks, 2)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNoAnalysis)
}

func TestRank_RejectsInvalidStrategy(t *testing.T) {
	e, _ := newEngine()

	_, err := e.Rank(Request{Strategy: "chaos", Tasks: titled("a")})
	var ce *clierr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, clierr.InvalidStrategy, ce.Code)
}

func TestSuggest_IgnoresCallerCancellation(t *testing.T) {
	store := session.NewFile(filepath.Join(t.TempDir(), "last_analysis.json"))
	e := New(store, WithClock(fixedClock))

	_, err := e.Analyze(context.Background(), Request{Tasks: titled("a", "b")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sug, err := e.Suggest(ctx)
	require.NoError(t, err)
	assert.Len(t, sug.Suggested, 2)
}
