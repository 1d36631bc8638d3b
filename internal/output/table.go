package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	issueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

	// Label colors match the TUI palette.
	labelStyles = map[priority.Label]lipgloss.Style{
		priority.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		priority.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		priority.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	issueStyle = lipgloss.NewStyle()
	labelStyles = map[priority.Label]lipgloss.Style{}
}

// LabelStyle returns the style used for a priority label.
func LabelStyle(l priority.Label) lipgloss.Style {
	if st, ok := labelStyles[l]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// RankedTable renders ranked tasks as a formatted table.
func RankedTable(w io.Writer, tasks []priority.ScoredTask) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	rankW, idW, titleW := 5, 4, 5
	for i, t := range tasks {
		rankW = max(rankW, len(strconv.Itoa(i+1))+pad)
		idW = max(idW, len(strconv.Itoa(t.ID))+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
	}
	const scoreW, labelW, dueW, hoursW, impW, blocksW = 7, 9, 12, 7, 5, 7

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %-*s %s",
		rankW, "RANK", idW, "ID", scoreW, "SCORE", labelW, "PRIORITY",
		titleW, "TITLE", dueW, "DUE", hoursW, "HOURS", impW, "IMP", blocksW, "BLOCKS", "ISSUES")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for i, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		due := dimStyle.Render("--")
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		issues := dimStyle.Render("--")
		if n := len(t.Issues); n > 0 {
			issues = issueStyle.Render("!" + strconv.Itoa(n))
		}

		row := fmt.Sprintf("%-*d %-*d %-*.3f %s %s %s %-*s %-*d %-*d %s",
			rankW, i+1,
			idW, t.ID,
			scoreW, t.Score,
			padRight(LabelStyle(t.Label).Render(string(t.Label)), labelW),
			padRight(title, titleW),
			padRight(due, dueW),
			hoursW, priority.FormatHours(t.EstimatedHours),
			impW, t.Importance,
			blocksW, t.Blocks,
			issues)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single scored task with full detail.
func TaskDetail(w io.Writer, t priority.ScoredTask) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ID, t.Title)
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Priority", LabelStyle(t.Label).Render(string(t.Label)))
	printField(w, "Score", strconv.FormatFloat(t.Score, 'f', 3, 64))
	if t.DueDate != nil {
		printField(w, "Due", t.DueDate.String())
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	printField(w, "Hours", priority.FormatHours(t.EstimatedHours))
	printField(w, "Importance", strconv.Itoa(t.Importance)+"/10")
	printField(w, "Depends on", idList(t.Dependencies))
	printField(w, "Blocks", strconv.Itoa(t.Blocks))
	printField(w, "Why", t.Explanation)
	for _, issue := range t.Issues {
		printField(w, "Issue", issueStyle.Render(issue))
	}
}

// SummaryTable renders aggregate metrics for a ranked batch.
func SummaryTable(w io.Writer, s report.Summary) {
	fmt.Fprintln(w, titleStyle.Render(s.Strategy.Title()))
	fmt.Fprintf(w, "Total: %d tasks, mean score %.3f\n\n", s.Total, s.MeanScore)

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s", "PRIORITY", "COUNT")))
	for _, lc := range s.Labels {
		const labelColW = 16
		fmt.Fprintf(w, "%s %6d\n", padRight(LabelStyle(lc.Label).Render(string(lc.Label)), labelColW), lc.Count)
	}

	fmt.Fprintln(w)
	printField(w, "Overdue", strconv.Itoa(s.Overdue))
	printField(w, "In cycle", strconv.Itoa(s.InCycle))
	printField(w, "With issues", strconv.Itoa(s.WithIssues))
	if s.TopID != nil {
		printField(w, "Top task", "#"+strconv.Itoa(*s.TopID))
	}
}

// GroupedTable renders a grouped view, one ranked table per group.
func GroupedTable(w io.Writer, g report.Grouped) {
	if len(g.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, grp := range g.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d tasks)", grp.Key, grp.Total)))
		RankedTable(w, grp.Tasks)
	}
}

// StrategiesTable lists every strategy with its weights.
func StrategiesTable(w io.Writer, strategies []priority.Strategy) {
	header := fmt.Sprintf("%-18s %8s %11s %7s %11s  %s",
		"STRATEGY", "URGENCY", "IMPORTANCE", "EFFORT", "DEPENDENCY", "FOCUS")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, s := range strategies {
		wt := s.Weights()
		name := string(s)
		if s == priority.DefaultStrategy {
			name += "*"
		}
		fmt.Fprintf(w, "%-18s %8.2f %11.2f %7.2f %11.2f  %s\n",
			name, wt.Urgency, wt.Importance, wt.Effort, wt.Dependency, s.Focus())
	}
	fmt.Fprintln(w, dimStyle.Render("* default"))
}

// HistoryTable renders recorded analyses, oldest first.
func HistoryTable(w io.Writer, entries []report.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No analyses recorded.")
		return
	}
	header := fmt.Sprintf("%-20s %-16s %6s %7s  %s", "TIME", "STRATEGY", "TASKS", "ISSUES", "TOP")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s %-16s %6d %7d  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Strategy, e.Tasks, e.WithIssues, idList(e.Top))
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func idList(ids []int) string {
	if len(ids) == 0 {
		return dimStyle.Render("--")
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
