// Package task handles task input records: decoding, validation, and task files.
package task

import (
	"slices"

	"github.com/twiced-technology-gmbh/taskrank/internal/date"
)

// Defaults applied when a field is absent.
const (
	DefaultEstimatedHours = 1.0
	DefaultImportance     = 5

	MinImportance  = 1
	MaxImportance  = 10
	MaxTitleLength = 255
	MinDueYear     = 1970
)

// Input is a task as it arrives on the wire or in a task file.
// Optional fields are nil when absent.
type Input struct {
	ID             *int       `yaml:"id,omitempty" json:"id,omitempty"`
	Title          string     `yaml:"title" json:"title"`
	DueDate        *date.Date `yaml:"due_date,omitempty" json:"due_date"`
	EstimatedHours *float64   `yaml:"estimated_hours,omitempty" json:"estimated_hours,omitempty"`
	Importance     *int       `yaml:"importance,omitempty" json:"importance,omitempty"`
	Dependencies   []int      `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`

	// Body is the markdown content below the frontmatter (task files only).
	Body string `yaml:"-" json:"-"`

	// File is the path to the task file (task files only).
	File string `yaml:"-" json:"-"`
}

// Task is a normalized input: every default has been decided.
type Task struct {
	ID             *int
	Title          string
	DueDate        *date.Date
	EstimatedHours float64
	Importance     int
	Dependencies   []int
}

// Batch is a decoded analysis request.
type Batch struct {
	Strategy string  `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Tasks    []Input `yaml:"tasks" json:"tasks"`
}

// Normalize applies the field defaults. Non-positive hours fall back to the default.
func (in Input) Normalize() Task {
	t := Task{
		ID:             in.ID,
		Title:          in.Title,
		DueDate:        in.DueDate,
		EstimatedHours: DefaultEstimatedHours,
		Importance:     DefaultImportance,
		Dependencies:   []int{},
	}
	if in.EstimatedHours != nil && *in.EstimatedHours > 0 {
		t.EstimatedHours = *in.EstimatedHours
	}
	if in.Importance != nil {
		t.Importance = *in.Importance
	}
	if len(in.Dependencies) > 0 {
		t.Dependencies = slices.Clone(in.Dependencies)
	}
	return t
}

// NormalizeAll normalizes every input, preserving order.
func NormalizeAll(inputs []Input) []Task {
	tasks := make([]Task, len(inputs))
	for i, in := range inputs {
		tasks[i] = in.Normalize()
	}
	return tasks
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
