package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

func TestValidate_Clean(t *testing.T) {
	due := date.New(2025, time.January, 1)
	inputs := []Input{
		{Title: "a"},
		{Title: "b", Importance: IntPtr(10), DueDate: &due},
	}
	assert.Nil(t, Validate(inputs))
	assert.False(t, Validate(inputs).HasErrors())
}

func TestValidate_Problems(t *testing.T) {
	old := date.New(1960, time.May, 1)
	inputs := []Input{
		{Title: "   "},
		{Title: strings.Repeat("x", MaxTitleLength+1)},
		{Title: "ok", Importance: IntPtr(0), DueDate: &old},
	}

	ve := Validate(inputs)
	require.True(t, ve.HasErrors())

	fields := ve.Fields()
	assert.Equal(t, []string{"This field may not be blank."}, fields["tasks[0].title"])
	assert.Equal(t, []string{"Ensure this field has no more than 255 characters."}, fields["tasks[1].title"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 1."}, fields["tasks[2].importance"])
	assert.Equal(t, []string{"due_date looks invalid."}, fields["tasks[2].due_date"])
}

func TestValidate_TitleCountsRunes(t *testing.T) {
	title := strings.Repeat("é", MaxTitleLength)
	assert.Nil(t, Validate([]Input{{Title: title}}))
}

func TestValidationErrors_CLIError(t *testing.T) {
	ve := &ValidationErrors{}
	ve.Add("tasks[0].importance", "too big")
	ve.Add("tasks[1].title", "blank")

	ce := ve.CLIError()
	assert.Equal(t, clierr.InvalidImportance, ce.Code)
	assert.Equal(t, "invalid input: tasks[0].importance: too big (and 1 more)", ce.Message)
	assert.Equal(t, []string{"blank"}, ce.Details["tasks[1].title"])
}

func TestValidationErrors_CLIErrorEmpty(t *testing.T) {
	ce := (&ValidationErrors{}).CLIError()
	assert.Equal(t, clierr.InvalidInput, ce.Code)
}

func TestValidationErrors_Merge(t *testing.T) {
	a := &ValidationErrors{}
	a.Add("strategy", "bad")
	b := &ValidationErrors{}
	b.Add("tasks[0].title", "blank")

	a.Merge(b)
	a.Merge(nil)
	assert.Len(t, a.Errors, 2)
	assert.Equal(t, clierr.InvalidStrategy, a.CLIError().Code)
	assert.Equal(t, "strategy: bad\ntasks[0].title: blank", a.Error())
}

func TestNormalize_Defaults(t *testing.T) {
	got := Input{Title: "a"}.Normalize()

	assert.InDelta(t, DefaultEstimatedHours, got.EstimatedHours, 1e-9)
	assert.Equal(t, DefaultImportance, got.Importance)
	assert.Equal(t, []int{}, got.Dependencies)
	assert.Nil(t, got.ID)
}

func TestNormalize_NonPositiveHours(t *testing.T) {
	assert.InDelta(t, 1.0, Input{Title: "a", EstimatedHours: FloatPtr(0)}.Normalize().EstimatedHours, 1e-9)
	assert.InDelta(t, 1.0, Input{Title: "a", EstimatedHours: FloatPtr(-3)}.Normalize().EstimatedHours, 1e-9)
	assert.InDelta(t, 6.0, Input{Title: "a", EstimatedHours: FloatPtr(6)}.Normalize().EstimatedHours, 1e-9)
}

func TestNormalize_ClonesDependencies(t *testing.T) {
	in := Input{Title: "a", Dependencies: []int{1, 2}}
	got := in.Normalize()
	got.Dependencies[0] = 99

	assert.Equal(t, []int{1, 2}, in.Dependencies)
}
