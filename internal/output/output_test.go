package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/report"
)

func sample() []priority.ScoredTask {
	due := date.New(2025, time.March, 14)
	return []priority.ScoredTask{
		{ID: 1, Title: "Fix login", Score: 0.96, Label: priority.High, EstimatedHours: 2, Importance: 8, Blocks: 1,
			Explanation: "Overdue task (higher urgency)."},
		{ID: 3, Title: "Refactor storage", Score: 0.33, Label: priority.Low, EstimatedHours: 8, Importance: 5,
			DueDate: &due, Dependencies: []int{1}, Issues: []string{"Unknown dependency id 99 ignored."}},
	}
}

func TestDetect(t *testing.T) {
	t.Setenv(EnvOutput, "")
	assert.Equal(t, FormatJSON, Detect(true, true, true))
	assert.Equal(t, FormatCompact, Detect(false, true, true))
	assert.Equal(t, FormatTable, Detect(false, true, false))
	assert.Equal(t, FormatTable, Detect(false, false, false))

	t.Setenv(EnvOutput, "json")
	assert.Equal(t, FormatJSON, Detect(false, false, false))
	t.Setenv(EnvOutput, "oneline")
	assert.Equal(t, FormatCompact, Detect(false, false, false))
	assert.Equal(t, FormatTable, Detect(false, true, false))
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer
	e := clierr.New(clierr.NoPriorAnalysis, "No analyzed tasks found.")
	resp := NewErrorResponse(e)
	JSONError(&buf, resp.Code, resp.Error, resp.Details)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "NO_PRIOR_ANALYSIS", got["code"])
	assert.Equal(t, "No analyzed tasks found.", got["error"])
	assert.NotContains(t, got, "details")
}

func TestRankedTable(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	RankedTable(&buf, sample())

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "PRIORITY")
	assert.Contains(t, out, "0.960")
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "2025-03-14")
	assert.Contains(t, out, "!1")
	assert.NotContains(t, out, "\x1b[")
}

func TestRankedCompact(t *testing.T) {
	var buf bytes.Buffer
	RankedCompact(&buf, sample())
	assert.Equal(t,
		"#1 [High 0.960] Fix login\n"+
			"#3 [Low 0.330] Refactor storage due:2025-03-14 deps:1 issues:1\n",
		buf.String())
}

func TestTaskDetailCompact(t *testing.T) {
	var buf bytes.Buffer
	TaskDetailCompact(&buf, sample()[1])
	assert.Contains(t, buf.String(), "  ! Unknown dependency id 99 ignored.")
}

func TestSummaryCompact(t *testing.T) {
	var buf bytes.Buffer
	SummaryCompact(&buf, report.Summarize(sample(), priority.SmartBalance))
	assert.Equal(t,
		"smart_balance (2 tasks)\nPriority: High=1 Medium=0 Low=1\n1 with issues\n",
		buf.String())
}

func TestStrategiesTable(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	StrategiesTable(&buf, priority.Strategies())
	out := buf.String()
	assert.Contains(t, out, "smart_balance*")
	assert.Contains(t, out, "fastest_wins")
	assert.Contains(t, out, "favoring due date")
}

func TestGroupedCompact(t *testing.T) {
	g, err := report.GroupBy(sample(), "label", date.New(2025, time.March, 10))
	require.NoError(t, err)
	var buf bytes.Buffer
	GroupedCompact(&buf, g)
	assert.Equal(t,
		"High (1)\n  #1 [High 0.960] Fix login\nLow (1)\n  #3 [Low 0.330] Refactor storage due:2025-03-14 deps:1 issues:1\n",
		buf.String())
}
