package model

import "fmt"

// StalePolicy configures the scheduled stale pass: which issues are
// eligible, how long before they are marked and closed, and what gets
// posted when they transition.
type StalePolicy struct {
	Schedule                string   // Cron expression for the scheduled pass.
	DaysBeforeStale         int      // Inactivity days before an issue is marked stale.
	DaysBeforeClose         int      // Grace days after marking before the issue is closed.
	StaleLabel              string   // Label applied when an issue goes stale.
	StaleMessage            string   // Comment posted when marking an issue stale.
	OnlyLabels              []string // If set, issues must carry all of these labels.
	ExemptLabels            []string // Issues carrying any of these labels are never touched.
	LabelsToRemoveWhenStale []string // Labels stripped when the stale label is applied.
	OperationsPerRun        int      // Mutation budget per pass; 0 means unlimited.
	CloseReason             CloseReason
}

// Validate checks the policy for values the pass cannot run with.
func (p StalePolicy) Validate() error {
	if p.DaysBeforeStale <= 0 {
		return fmt.Errorf("days-before-stale must be positive, got %d", p.DaysBeforeStale)
	}
	if p.DaysBeforeClose < 0 {
		return fmt.Errorf("days-before-close must not be negative, got %d", p.DaysBeforeClose)
	}
	if p.StaleLabel == "" {
		return fmt.Errorf("stale-issue-label must not be empty")
	}
	if p.OperationsPerRun < 0 {
		return fmt.Errorf("operations-per-run must not be negative, got %d", p.OperationsPerRun)
	}
	if !p.CloseReason.Valid() {
		return fmt.Errorf("close-issue-reason must be %q or %q, got %q",
			CloseReasonCompleted, CloseReasonNotPlanned, p.CloseReason)
	}
	return nil
}

// ReleasePolicy configures the release-close pass: which issues get closed
// when a release is published and what comment announces it.
type ReleasePolicy struct {
	OnlyLabels  []string // Issues must carry all of these labels to be closed.
	Message     string   // Comment template; may reference {{.ReleaseTag}} and {{.ReleaseLink}}.
	CloseReason CloseReason
}

// Enabled reports whether the release-close pass is configured at all.
// With no label predicate the pass would close every open issue, so an
// empty OnlyLabels disables it.
func (p ReleasePolicy) Enabled() bool {
	return len(p.OnlyLabels) > 0
}

// Validate checks the policy for values the pass cannot run with.
func (p ReleasePolicy) Validate() error {
	if !p.Enabled() {
		return nil
	}
	if p.Message == "" {
		return fmt.Errorf("release-close message must not be empty")
	}
	if !p.CloseReason.Valid() {
		return fmt.Errorf("close-issue-reason must be %q or %q, got %q",
			CloseReasonCompleted, CloseReasonNotPlanned, p.CloseReason)
	}
	return nil
}
