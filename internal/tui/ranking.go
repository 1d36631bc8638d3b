// Package tui implements an interactive view of a ranked task batch.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/output"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// Layout constants.
const (
	listChrome    = 3 // header, blank line, status bar
	errorChrome   = 1 // extra line when the error toast is shown
	minListWidth  = 40
	detailMinimum = 30
	tickInterval  = time.Minute // re-rank so overdue flags follow the clock
)

// Loader returns the current batch. It is called on start and on every reload.
type Loader func() ([]task.Input, error)

// Ranking is the top-level bubbletea model.
type Ranking struct {
	load     Loader
	strategy priority.Strategy
	now      func() time.Time
	keys     keyMap

	inputs []task.Input
	tasks  []priority.ScoredTask
	cursor int
	offset int

	detail bool
	width  int
	height int
	err    error
}

// ReloadMsg is sent by the file watcher to trigger a reload.
type ReloadMsg struct{}

// TickMsg is sent periodically to re-rank against the current date.
type TickMsg struct{}

// NewRanking creates a Ranking that reads tasks through load and ranks them
// under s.
func NewRanking(load Loader, s priority.Strategy) *Ranking {
	r := &Ranking{
		load:     load,
		strategy: s,
		now:      time.Now,
		keys:     defaultKeys(),
		detail:   true,
	}
	r.reload()
	return r
}

// SetNow overrides the clock used to decide overdue tasks (for testing).
func (r *Ranking) SetNow(fn func() time.Time) {
	r.now = fn
	r.rank()
}

// Strategy returns the strategy currently applied.
func (r *Ranking) Strategy() priority.Strategy { return r.strategy }

// Selected returns the task under the cursor, if any.
func (r *Ranking) Selected() (priority.ScoredTask, bool) {
	if r.cursor < 0 || r.cursor >= len(r.tasks) {
		return priority.ScoredTask{}, false
	}
	return r.tasks[r.cursor], true
}

// Init implements tea.Model.
func (r *Ranking) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (r *Ranking) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return r.handleKey(msg)
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.ensureVisible()
		return r, nil
	case ReloadMsg:
		r.reload()
		return r, nil
	case TickMsg:
		r.rank()
		return r, tickCmd()
	}
	return r, nil
}

func (r *Ranking) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keys.Quit):
		return r, tea.Quit
	case key.Matches(msg, r.keys.Up):
		if r.cursor > 0 {
			r.cursor--
		}
	case key.Matches(msg, r.keys.Down):
		if r.cursor < len(r.tasks)-1 {
			r.cursor++
		}
	case key.Matches(msg, r.keys.Top):
		r.cursor = 0
	case key.Matches(msg, r.keys.Bottom):
		r.cursor = max(0, len(r.tasks)-1)
	case key.Matches(msg, r.keys.Strategy):
		r.strategy = r.strategy.Next()
		r.rank()
	case key.Matches(msg, r.keys.Reload):
		r.reload()
	case key.Matches(msg, r.keys.Detail):
		r.detail = !r.detail
	}
	r.ensureVisible()
	return r, nil
}

// reload reads the batch again. On failure the previous ranking stays on
// screen next to the error.
func (r *Ranking) reload() {
	inputs, err := r.load()
	if err == nil {
		if verrs := task.Validate(inputs); verrs != nil {
			err = verrs
		}
	}
	if err != nil {
		r.err = err
		return
	}
	r.err = nil
	r.inputs = inputs
	r.rank()
}

// rank recomputes the ranking, keeping the cursor on the same task id.
func (r *Ranking) rank() {
	selected, hasSelected := r.Selected()
	r.tasks = priority.Analyze(task.NormalizeAll(r.inputs), r.strategy, date.FromTime(r.now()))

	r.cursor = min(r.cursor, max(0, len(r.tasks)-1))
	if hasSelected {
		for i, t := range r.tasks {
			if t.ID == selected.ID {
				r.cursor = i
				break
			}
		}
	}
	r.ensureVisible()
}

func (r *Ranking) visibleRows() int {
	rows := r.height - listChrome
	if r.err != nil {
		rows -= errorChrome
	}
	return max(1, rows)
}

func (r *Ranking) ensureVisible() {
	rows := r.visibleRows()
	if r.cursor < r.offset {
		r.offset = r.cursor
	}
	if r.cursor >= r.offset+rows {
		r.offset = r.cursor - rows + 1
	}
	r.offset = max(0, min(r.offset, max(0, len(r.tasks)-rows)))
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	issueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// --- View rendering ---

// View implements tea.Model.
func (r *Ranking) View() string {
	if r.width == 0 {
		return "Loading..."
	}

	listWidth := r.width
	showDetail := r.detail && r.width >= minListWidth+detailMinimum
	if showDetail {
		listWidth = r.width * 3 / 5 //nolint:mnd // list takes three fifths
	}

	body := r.renderList(listWidth)
	if showDetail {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, r.renderDetail(r.width-listWidth-2)) //nolint:mnd // detail border
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, "", r.renderStatusBar())
}

func (r *Ranking) renderList(width int) string {
	header := headerStyle.Render(truncate(
		fmt.Sprintf("%-4s %-6s %-7s %s", "#", "SCORE", "LABEL", r.strategy.Title()), width-2)) //nolint:mnd // header padding

	if len(r.tasks) == 0 {
		return header + "\n" + dimStyle.Render("No tasks.")
	}

	rows := r.visibleRows()
	end := min(len(r.tasks), r.offset+rows)
	lines := make([]string, 0, end-r.offset+1)
	lines = append(lines, header)

	for i := r.offset; i < end; i++ {
		t := r.tasks[i]
		marker := " "
		if len(t.Issues) > 0 {
			marker = "!"
		}
		label := fmt.Sprintf("%-7s", t.Label)
		line := fmt.Sprintf("%-4s %-6.3f %s%s %s",
			strconv.Itoa(i+1), t.Score, label, marker, t.Title)
		line = truncate(line, width)

		if i == r.cursor {
			line = cursorStyle.Render(padRight(line, width))
		} else {
			line = strings.Replace(line, label, output.LabelStyle(t.Label).Render(label), 1)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (r *Ranking) renderDetail(width int) string {
	t, ok := r.Selected()
	if !ok {
		return detailStyle.Width(width).Render(dimStyle.Render("Nothing selected."))
	}

	inner := max(1, width-4) //nolint:mnd // border and padding
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", lipgloss.NewStyle().Bold(true).Render(truncate(fmt.Sprintf("#%d %s", t.ID, t.Title), inner)))
	fmt.Fprintf(&b, "%s %.3f\n\n", output.LabelStyle(t.Label).Render(string(t.Label)), t.Score)

	due := "--"
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	fmt.Fprintf(&b, "Due:        %s\n", due)
	fmt.Fprintf(&b, "Hours:      %s\n", priority.FormatHours(t.EstimatedHours))
	fmt.Fprintf(&b, "Importance: %d/10\n", t.Importance)
	fmt.Fprintf(&b, "Depends on: %s\n", idList(t.Dependencies))
	fmt.Fprintf(&b, "Blocks:     %d\n\n", t.Blocks)
	b.WriteString(wrap(t.Explanation, inner))
	for _, issue := range t.Issues {
		b.WriteString("\n" + issueStyle.Render(truncate("! "+issue, inner)))
	}

	return detailStyle.Width(width).Render(b.String())
}

func (r *Ranking) renderStatusBar() string {
	status := fmt.Sprintf(" %s | %d tasks | %s", r.strategy, len(r.tasks), r.keys.help())
	status = truncate(status, r.width)

	if r.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+firstLine(r.err.Error()), r.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func idList(ids []int) string {
	if len(ids) == 0 {
		return "--"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// wrap breaks s on spaces so no line exceeds width.
func wrap(s string, width int) string {
	var b strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(s) {
		wl := lipgloss.Width(word)
		if lineLen > 0 && lineLen+1+wl > width {
			b.WriteByte('\n')
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(word)
		lineLen += wl
	}
	return b.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
