package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestParse(t *testing.T) {
	d, err := Parse("2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, New(2025, time.December, 1), d)

	_, err = Parse("12/01/2025")
	assert.Error(t, err)
}

func TestDaysUntil(t *testing.T) {
	today := New(2025, time.March, 10)

	assert.Equal(t, 0, today.DaysUntil(today))
	assert.Equal(t, 30, today.DaysUntil(New(2025, time.April, 9)))
	assert.Equal(t, -1, today.DaysUntil(New(2025, time.March, 9)))
}

func TestFromTime_DropsClock(t *testing.T) {
	ts := time.Date(2025, time.June, 3, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, New(2025, time.June, 3), FromTime(ts))
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Due *Date `json:"due"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-02-29"}`), &w))
	require.NotNil(t, w.Due)
	assert.Equal(t, "2024-02-29", w.Due.String())

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-02-29"}`, string(out))

	var empty wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &empty))
	assert.Nil(t, empty.Due)
}

func TestYAMLUnmarshal(t *testing.T) {
	var w struct {
		Due Date `yaml:"due"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("due: 2025-01-15\n"), &w))
	assert.Equal(t, New(2025, time.January, 15), w.Due)
}
