package session

import (
	"context"
	"sync"
)

// Memory is a Store for a single process, such as the HTTP server.
type Memory struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the stored snapshot.
func (m *Memory) Load(_ context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, ErrNoAnalysis
	}
	return m.snap.clone(), nil
}

// Save stores a copy of snap.
func (m *Memory) Save(_ context.Context, snap *Snapshot) error {
	c := snap.clone()
	m.mu.Lock()
	m.snap = c
	m.mu.Unlock()
	return nil
}
