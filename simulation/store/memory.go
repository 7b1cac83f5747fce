// Package store provides RunStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/debt-engine/simulation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	runs  map[string]simulation.Run
	order []string // insertion order, oldest first
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]simulation.Run)}
}

func (m *Memory) SaveRun(_ context.Context, run simulation.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; !exists {
		m.order = append(m.order, run.ID)
	}
	// Copy the series so later appends by the caller can't alias.
	run.Series = append([]simulation.Record{}, run.Series...)
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*simulation.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, simulation.ErrRunNotFound
	}
	out := run
	out.Series = append([]simulation.Record{}, run.Series...)
	return &out, nil
}

func (m *Memory) ListRuns(_ context.Context) ([]simulation.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]simulation.Run, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		run := m.runs[m.order[i]]
		run.Series = nil // summaries only
		result = append(result, run)
	}
	return result, nil
}
