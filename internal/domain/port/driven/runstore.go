package driven

import (
	"context"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// RunStore persists triage run records.
type RunStore interface {
	// Begin inserts a new in-flight run and returns it with ID assigned.
	Begin(ctx context.Context, run model.TriageRun) (*model.TriageRun, error)
	// Finish updates the run's counters, finish time, and error.
	Finish(ctx context.Context, run model.TriageRun) error
	// GetByID returns the run with the given ID, or nil if not found.
	GetByID(ctx context.Context, id int64) (*model.TriageRun, error)
	// ListRecent returns the most recent runs, newest first, up to limit.
	ListRecent(ctx context.Context, limit int) ([]model.TriageRun, error)
}
