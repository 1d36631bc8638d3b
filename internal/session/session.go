// Package session keeps the most recently analyzed batch so that later
// suggestions can re-rank it.
package session

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/twiced-technology-gmbh/taskrank/internal/priority"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// ErrNoAnalysis is returned by Load before anything was saved.
var ErrNoAnalysis = errors.New("no analyzed tasks found")

// Snapshot is one analyzed batch as it was submitted.
type Snapshot struct {
	Strategy   priority.Strategy `json:"strategy"`
	Tasks      []task.Input      `json:"tasks"`
	AnalyzedAt time.Time         `json:"analyzed_at"`
}

// Store holds a single snapshot. Save replaces it wholesale; the last
// writer wins.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Tasks = make([]task.Input, len(s.Tasks))
	for i, in := range s.Tasks {
		in.Dependencies = slices.Clone(in.Dependencies)
		out.Tasks[i] = in
	}
	return &out
}
