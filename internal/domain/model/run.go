package model

import "time"

// TriageRun records one execution of a triage pass.
type TriageRun struct {
	ID             int64
	Trigger        TriggerKind
	RepoFullName   string
	StartedAt      time.Time
	FinishedAt     time.Time // Zero while the run is in flight.
	Marked         int       // Issues newly marked stale.
	Unmarked       int       // Issues that regained activity and lost the stale label.
	Closed         int       // Issues closed (stale or release-close).
	Commented      int       // Comments posted.
	OperationsUsed int
	BudgetHit      bool   // True when the pass stopped on an exhausted operations budget.
	Error          string // Empty on success.
}

// Duration returns how long the run took, or zero if it has not finished.
func (r TriageRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TriageAction records a single mutation performed during a run.
type TriageAction struct {
	ID           int64
	RunID        int64
	RepoFullName string
	IssueNumber  int
	Kind         ActionKind
	Detail       string // Human-readable context, e.g. the release tag or mark age.
	CreatedAt    time.Time
}
