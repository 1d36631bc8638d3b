package task

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("tasks.json", nil))
	assert.Equal(t, FormatYAML, DetectFormat("tasks.yml", nil))
	assert.Equal(t, FormatYAML, DetectFormat("tasks.YAML", []byte("[]")))
	assert.Equal(t, FormatJSON, DetectFormat("", []byte("  [ {} ]")))
	assert.Equal(t, FormatJSON, DetectFormat("", []byte("\n{\"tasks\": []}")))
	assert.Equal(t, FormatYAML, DetectFormat("", []byte("- title: a")))
}

func TestDecodeBatch_BareList(t *testing.T) {
	data := `[
		{"id": 1, "title": "Write docs", "due_date": "2025-12-01", "estimated_hours": 2.5, "importance": 7, "dependencies": [2]},
		{"title": "  Fix bug  "}
	]`

	b, err := DecodeBatch([]byte(data), FormatJSON)
	require.NoError(t, err)
	require.Len(t, b.Tasks, 2)
	assert.Empty(t, b.Strategy)

	first := b.Tasks[0]
	require.NotNil(t, first.ID)
	assert.Equal(t, 1, *first.ID)
	assert.Equal(t, "Write docs", first.Title)
	require.NotNil(t, first.DueDate)
	assert.Equal(t, date.New(2025, time.December, 1), *first.DueDate)
	require.NotNil(t, first.EstimatedHours)
	assert.InDelta(t, 2.5, *first.EstimatedHours, 1e-9)
	require.NotNil(t, first.Importance)
	assert.Equal(t, 7, *first.Importance)
	assert.Equal(t, []int{2}, first.Dependencies)

	second := b.Tasks[1]
	assert.Nil(t, second.ID)
	assert.Equal(t, "Fix bug", second.Title)
	assert.Nil(t, second.DueDate)
	assert.Nil(t, second.EstimatedHours)
	assert.Nil(t, second.Importance)
	assert.Nil(t, second.Dependencies)
}

func TestDecodeBatch_ObjectWithStrategy(t *testing.T) {
	data := `{"strategy": "fastest_wins", "tasks": [{"title": "a"}]}`

	b, err := DecodeBatch([]byte(data), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "fastest_wins", b.Strategy)
	assert.Len(t, b.Tasks, 1)
}

func TestDecodeBatch_YAML(t *testing.T) {
	data := `
strategy: deadline_driven
tasks:
  - id: 3
    title: Ship release
    due_date: 2025-06-01
    estimated_hours: 4
    importance: "8"
    dependencies: [1, "2"]
  - id: 1
    title: Tag
  - id: 2
    title: Changelog
`
	b, err := DecodeBatch([]byte(data), FormatYAML)
	require.NoError(t, err)
	require.Len(t, b.Tasks, 3)

	first := b.Tasks[0]
	require.NotNil(t, first.DueDate)
	assert.Equal(t, date.New(2025, time.June, 1), *first.DueDate)
	assert.InDelta(t, 4.0, *first.EstimatedHours, 1e-9)
	assert.Equal(t, 8, *first.Importance)
	assert.Equal(t, []int{1, 2}, first.Dependencies)
}

func TestDecodeBatch_Coercion(t *testing.T) {
	data := `[{"id": "4", "title": "a", "estimated_hours": "1.5", "importance": 3.0}]`

	b, err := DecodeBatch([]byte(data), FormatJSON)
	require.NoError(t, err)
	in := b.Tasks[0]
	assert.Equal(t, 4, *in.ID)
	assert.InDelta(t, 1.5, *in.EstimatedHours, 1e-9)
	assert.Equal(t, 3, *in.Importance)
}

func TestDecodeBatch_CollectsAllProblems(t *testing.T) {
	data := `[
		{"title": "", "importance": 11},
		{"importance": "high", "due_date": "01/02/2025"},
		{"title": "ok", "due_date": "1969-12-31", "dependencies": [1, "x"]},
		"not an object"
	]`

	b, err := DecodeBatch([]byte(data), FormatJSON)
	require.Error(t, err)
	require.NotNil(t, b)

	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	fields := ve.Fields()

	assert.Equal(t, []string{"This field may not be blank."}, fields["tasks[0].title"])
	assert.Equal(t, []string{"Ensure this value is less than or equal to 10."}, fields["tasks[0].importance"])
	assert.Equal(t, []string{"This field is required."}, fields["tasks[1].title"])
	assert.Equal(t, []string{"A valid integer is required."}, fields["tasks[1].importance"])
	assert.Contains(t, fields["tasks[1].due_date"][0], "Date has wrong format")
	assert.Equal(t, []string{"due_date looks invalid."}, fields["tasks[2].due_date"])
	assert.Equal(t, []string{"A valid integer is required."}, fields["tasks[2].dependencies[1]"])
	assert.Contains(t, fields["tasks[3]"][0], "Expected a dictionary")
}

func TestDecodeBatch_RejectsFractionalIDs(t *testing.T) {
	_, err := DecodeBatch([]byte(`[{"id": 1.5, "title": "a"}]`), FormatJSON)

	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields(), "tasks[0].id")
}

func TestDecodeBatch_MissingTasks(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"strategy": "high_impact"}`), FormatJSON)

	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"This field is required."}, ve.Fields()["tasks"])
}

func TestDecodeBatch_TasksNotAList(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"tasks": "nope"}`), FormatJSON)

	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{`Expected a list of items but got type "str".`}, ve.Fields()["tasks"])
}

func TestDecodeBatch_NonStringStrategy(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"strategy": 3, "tasks": []}`), FormatJSON)

	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, clierr.InvalidStrategy, ve.CLIError().Code)
}

func TestDecodeBatch_Malformed(t *testing.T) {
	_, err := DecodeBatch([]byte(`[{"title": `), FormatJSON)

	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidInput, ce.Code)
}

func TestDecodeBatch_EmptyDocument(t *testing.T) {
	_, err := DecodeBatch([]byte("   "), FormatJSON)

	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields(), "tasks")
}

func TestReadBatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- title: a\n- title: b\n"), 0o600))

	b, err := ReadBatchFile(path)
	require.NoError(t, err)
	assert.Len(t, b.Tasks, 2)

	_, err = ReadBatchFile(filepath.Join(dir, "missing.json"))
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidInput, ce.Code)
}

func TestReadBatch(t *testing.T) {
	b, err := ReadBatch(strings.NewReader(`[{"title": "a", "dependencies": []}]`))
	require.NoError(t, err)
	require.Len(t, b.Tasks, 1)
	assert.Equal(t, []int{}, b.Tasks[0].Dependencies)
}

func TestDecodeBatch_HCL(t *testing.T) {
	data := `
strategy = "high_impact"

task "Write release notes" {
  id              = 3
  due_date        = "2025-06-01"
  estimated_hours = 1.5
  importance      = 8
  dependencies    = [1, 2]
}

task "Tag" {
  id = 1
}

task "Changelog" {}
`
	assert.Equal(t, FormatHCL, DetectFormat("batch.hcl", []byte(data)))

	b, err := DecodeBatch([]byte(data), FormatHCL)
	require.NoError(t, err)
	assert.Equal(t, "high_impact", b.Strategy)
	require.Len(t, b.Tasks, 3)

	first := b.Tasks[0]
	assert.Equal(t, "Write release notes", first.Title)
	assert.Equal(t, 3, *first.ID)
	assert.Equal(t, date.New(2025, time.June, 1), *first.DueDate)
	assert.InDelta(t, 1.5, *first.EstimatedHours, 1e-9)
	assert.Equal(t, 8, *first.Importance)
	assert.Equal(t, []int{1, 2}, first.Dependencies)

	assert.Equal(t, "Changelog", b.Tasks[2].Title)
	assert.Nil(t, b.Tasks[2].ID)
}

func TestDecodeBatch_HCLProblems(t *testing.T) {
	_, err := DecodeBatch([]byte(`task "a" { importance = 0.5 }`), FormatHCL)
	var ve *ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields(), "tasks[0].importance")

	_, err = DecodeBatch([]byte(`task "a" {`), FormatHCL)
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidInput, ce.Code)
}
