package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

func fixedClock() time.Time { return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC) }

func dp(y int, m time.Month, d int) *date.Date {
	v := date.New(y, m, d)
	return &v
}

// quickVsDue ranks differently under fastest_wins and deadline_driven.
func quickVsDue() []task.Input {
	return []task.Input{
		{ID: task.IntPtr(1), Title: "Quick fix", EstimatedHours: task.FloatPtr(0.5), Importance: task.IntPtr(4)},
		{ID: task.IntPtr(2), Title: "Due soon", DueDate: dp(2025, time.March, 11), EstimatedHours: task.FloatPtr(12), Importance: task.IntPtr(4)},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newRanking(t *testing.T, s priority.Strategy, load Loader) *Ranking {
	t.Helper()
	r := NewRanking(load, s)
	r.SetNow(fixedClock)
	r.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return r
}

func staticLoader(inputs []task.Input) Loader {
	return func() ([]task.Input, error) { return inputs, nil }
}

func TestRanking_CyclesStrategy(t *testing.T) {
	r := newRanking(t, priority.DeadlineDriven, staticLoader(quickVsDue()))

	sel, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, 2, sel.ID)

	r.Update(runes("s"))
	assert.Equal(t, priority.SmartBalance, r.Strategy())

	r.Update(runes("s"))
	assert.Equal(t, priority.FastestWins, r.Strategy())
	assert.Equal(t, 1, r.tasks[0].ID)
}

func TestRanking_CursorFollowsTaskAcrossRerank(t *testing.T) {
	r := newRanking(t, priority.DeadlineDriven, staticLoader(quickVsDue()))

	r.Update(tea.KeyMsg{Type: tea.KeyDown})
	sel, _ := r.Selected()
	require.Equal(t, 1, sel.ID)

	r.Update(runes("s"))
	r.Update(runes("s"))
	sel, _ = r.Selected()
	assert.Equal(t, 1, sel.ID)
	assert.Equal(t, 0, r.cursor)
}

func TestRanking_CursorBounds(t *testing.T) {
	r := newRanking(t, priority.SmartBalance, staticLoader(quickVsDue()))

	r.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, r.cursor)
	r.Update(runes("G"))
	assert.Equal(t, 1, r.cursor)
	r.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, r.cursor)
	r.Update(runes("g"))
	assert.Equal(t, 0, r.cursor)
}

func TestRanking_ReloadKeepsLastGoodBatch(t *testing.T) {
	calls := 0
	load := func() ([]task.Input, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("broken file")
		}
		return quickVsDue(), nil
	}
	r := newRanking(t, priority.SmartBalance, load)
	require.Len(t, r.tasks, 2)

	r.Update(ReloadMsg{})
	assert.Equal(t, 2, calls)
	assert.Len(t, r.tasks, 2)
	assert.Contains(t, r.View(), "Error: broken file")
}

func TestRanking_ReloadRejectsInvalidBatch(t *testing.T) {
	inputs := quickVsDue()
	load := func() ([]task.Input, error) { return inputs, nil }
	r := newRanking(t, priority.SmartBalance, load)

	inputs = []task.Input{{Title: "  "}}
	r.Update(runes("r"))
	require.Error(t, r.err)
	assert.Len(t, r.tasks, 2)

	inputs = append(quickVsDue(), task.Input{ID: task.IntPtr(3), Title: "Third"})
	r.Update(runes("r"))
	assert.NoError(t, r.err)
	assert.Len(t, r.tasks, 3)
}

func TestRanking_View(t *testing.T) {
	r := newRanking(t, priority.SmartBalance, staticLoader(quickVsDue()))
	view := r.View()
	assert.Contains(t, view, "Smart Balance")
	assert.Contains(t, view, "Quick fix")
	assert.Contains(t, view, "Importance: 4/10")
	assert.Contains(t, view, "s:strategy")

	r.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotContains(t, r.View(), "Importance: 4/10")
}

func TestRanking_ViewBeforeSize(t *testing.T) {
	r := NewRanking(staticLoader(nil), priority.SmartBalance)
	assert.Equal(t, "Loading...", r.View())
}

func TestRanking_Quit(t *testing.T) {
	r := newRanking(t, priority.SmartBalance, staticLoader(quickVsDue()))
	_, cmd := r.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "aaa bb\ncc", wrap("aaa bb cc", 6))
}
