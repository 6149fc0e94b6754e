package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// ActionStore persists the individual mutations performed during triage runs.
// Besides being an audit log, it is the source of truth for when an issue was
// marked stale, which drives the days-before-close grace period.
type ActionStore interface {
	// Insert records one action.
	Insert(ctx context.Context, action model.TriageAction) error
	// ListByRun returns all actions belonging to a run, oldest first.
	ListByRun(ctx context.Context, runID int64) ([]model.TriageAction, error)
	// LastStaleMark returns the time the issue was most recently marked
	// stale, or nil if no mark is recorded. An unmark after the latest mark
	// also yields nil: the issue is no longer considered marked.
	LastStaleMark(ctx context.Context, repoFullName string, issueNumber int) (*time.Time, error)
}
