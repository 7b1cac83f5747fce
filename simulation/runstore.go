/*
runstore.go - Run persistence interface

PURPOSE:
  Defines how completed runs are recorded for later inspection. The
  simulation core never persists anything itself; the API layer saves
  a Run after Simulate returns. Implementations:
  - store/sqlite (module root): durable storage
  - simulation/store: in-memory, for tests and store-less servers
*/
package simulation

import (
	"context"
	"time"
)

// Run is a completed simulation run together with its recorded series.
type Run struct {
	ID        string
	Model     string // "conventional" or "mudarabah"
	Result    Result
	Series    []Record
	CreatedAt time.Time
}

// RunStore persists completed runs.
type RunStore interface {
	// SaveRun records a completed run and its series.
	SaveRun(ctx context.Context, run Run) error

	// GetRun returns a run with its full series, or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns run summaries, newest first, without series.
	ListRuns(ctx context.Context) ([]Run, error)
}
