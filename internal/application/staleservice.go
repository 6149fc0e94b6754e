// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
	"github.com/ericfisherdev/stalekeeper/internal/domain/port/driven"
	"github.com/ericfisherdev/stalekeeper/internal/metrics"
)

// errBudgetExhausted stops a pass when the operations budget runs out.
var errBudgetExhausted = errors.New("operations budget exhausted")

// opBudget tracks the per-run GitHub mutation budget. A zero limit means
// unlimited.
type opBudget struct {
	limit int
	used  int
}

// take consumes one operation, or returns false when the budget is exhausted.
func (b *opBudget) take() bool {
	if b.limit > 0 && b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// StaleService runs the stale pass: marking inactive issues, unmarking
// reactivated ones, and closing issues whose grace period has elapsed.
type StaleService struct {
	gh          driven.IssueClient
	runStore    driven.RunStore
	actionStore driven.ActionStore
	repo        string
	policy      model.StalePolicy
	recorder    metrics.Recorder
	clock       func() time.Time

	mu sync.Mutex // Serializes passes; scheduled and manual runs may overlap.
}

// NewStaleService creates a new StaleService with all required dependencies.
func NewStaleService(
	gh driven.IssueClient,
	runStore driven.RunStore,
	actionStore driven.ActionStore,
	repoFullName string,
	policy model.StalePolicy,
) *StaleService {
	return &StaleService{
		gh:          gh,
		runStore:    runStore,
		actionStore: actionStore,
		repo:        repoFullName,
		policy:      policy,
		recorder:    metrics.NoopRecorder{},
		clock:       time.Now,
	}
}

// WithRecorder sets the metrics recorder and returns the service for chaining.
func (s *StaleService) WithRecorder(r metrics.Recorder) *StaleService {
	s.recorder = r
	return s
}

// WithClock overrides the time source; used by tests.
func (s *StaleService) WithClock(clock func() time.Time) *StaleService {
	s.clock = clock
	return s
}

// Policy returns the policy the service runs with.
func (s *StaleService) Policy() model.StalePolicy {
	return s.policy
}

// Run executes one stale pass and returns the finished run record. Per-issue
// failures are logged and skipped; the pass itself fails only when issues
// cannot be listed or the run cannot be recorded.
func (s *StaleService) Run(ctx context.Context, trigger model.TriggerKind) (*model.TriageRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock()

	run, err := s.runStore.Begin(ctx, model.TriageRun{
		Trigger:      trigger,
		RepoFullName: s.repo,
		StartedAt:    start,
	})
	if err != nil {
		return nil, fmt.Errorf("begin stale run: %w", err)
	}

	budget := &opBudget{limit: s.policy.OperationsPerRun}
	passErr := s.pass(ctx, run, budget)

	run.OperationsUsed = budget.used
	run.FinishedAt = s.clock()
	if passErr != nil && !errors.Is(passErr, errBudgetExhausted) {
		run.Error = passErr.Error()
	}
	if errors.Is(passErr, errBudgetExhausted) {
		run.BudgetHit = true
	}

	if err := s.runStore.Finish(ctx, *run); err != nil {
		return nil, fmt.Errorf("finish stale run %d: %w", run.ID, err)
	}

	s.record(run)

	slog.Info("stale pass complete",
		"trigger", trigger,
		"repo", s.repo,
		"marked", run.Marked,
		"unmarked", run.Unmarked,
		"closed", run.Closed,
		"operations", run.OperationsUsed,
		"budget_hit", run.BudgetHit,
		"duration", run.Duration().Round(time.Millisecond),
	)

	if passErr != nil && !errors.Is(passErr, errBudgetExhausted) {
		return run, passErr
	}
	return run, nil
}

// pass walks all open issues and applies the stale policy to each.
func (s *StaleService) pass(ctx context.Context, run *model.TriageRun, budget *opBudget) error {
	issues, err := s.gh.ListOpenIssues(ctx, s.repo, s.policy.OnlyLabels)
	if err != nil {
		return err
	}

	now := s.clock()

	for _, issue := range issues {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if issue.HasAnyLabel(s.policy.ExemptLabels) {
			continue
		}
		// The adapter filters by only-labels server-side; re-check in case
		// a label was removed between listing and processing.
		if len(s.policy.OnlyLabels) > 0 && !issue.HasAllLabels(s.policy.OnlyLabels) {
			continue
		}

		var issueErr error
		if issue.HasLabel(s.policy.StaleLabel) {
			issueErr = s.processStale(ctx, run, issue, now, budget)
		} else {
			issueErr = s.processFresh(ctx, run, issue, now, budget)
		}

		if errors.Is(issueErr, errBudgetExhausted) {
			slog.Warn("operations budget exhausted, stopping pass",
				"repo", s.repo, "operations", budget.used)
			return errBudgetExhausted
		}
		if issueErr != nil {
			slog.Error("issue triage failed",
				"repo", s.repo, "issue", issue.Number, "error", issueErr)
		}
	}

	return nil
}

// processStale handles an issue that already carries the stale label:
// unmark it on renewed activity, close it once the grace period elapses.
func (s *StaleService) processStale(ctx context.Context, run *model.TriageRun, issue model.Issue, now time.Time, budget *opBudget) error {
	mark, err := s.actionStore.LastStaleMark(ctx, issue.RepoFullName, issue.Number)
	if err != nil {
		return err
	}

	// When the label was applied outside stalekeeper there is no recorded
	// mark; the issue's own updated-at then stands in for the mark time.
	markTime := issue.UpdatedAt
	if mark != nil {
		markTime = *mark

		if issue.UpdatedAt.After(markTime) {
			return s.unmark(ctx, run, issue, budget)
		}
	}

	if now.Sub(markTime) >= daysToDuration(s.policy.DaysBeforeClose) {
		return s.close(ctx, run, issue, markTime, now, budget)
	}

	return nil
}

// processFresh handles an issue without the stale label, marking it stale
// once it has been inactive for days-before-stale.
func (s *StaleService) processFresh(ctx context.Context, run *model.TriageRun, issue model.Issue, now time.Time, budget *opBudget) error {
	if !issue.InactiveFor(now, s.policy.DaysBeforeStale) {
		return nil
	}

	if !budget.take() {
		return errBudgetExhausted
	}
	if err := s.gh.CreateComment(ctx, issue.RepoFullName, issue.Number, s.policy.StaleMessage); err != nil {
		return err
	}
	run.Commented++

	if !budget.take() {
		return errBudgetExhausted
	}
	if err := s.gh.AddLabels(ctx, issue.RepoFullName, issue.Number, []string{s.policy.StaleLabel}); err != nil {
		return err
	}

	for _, label := range s.policy.LabelsToRemoveWhenStale {
		if !issue.HasLabel(label) {
			continue
		}
		if !budget.take() {
			return errBudgetExhausted
		}
		if err := s.gh.RemoveLabel(ctx, issue.RepoFullName, issue.Number, label); err != nil {
			return err
		}
	}

	run.Marked++
	return s.actionStore.Insert(ctx, model.TriageAction{
		RunID:        run.ID,
		RepoFullName: issue.RepoFullName,
		IssueNumber:  issue.Number,
		Kind:         model.ActionMarkedStale,
		Detail:       fmt.Sprintf("inactive for %d days", issue.DaysSinceLastActivity(now)),
		CreatedAt:    now,
	})
}

// unmark removes the stale label from an issue that saw new activity.
func (s *StaleService) unmark(ctx context.Context, run *model.TriageRun, issue model.Issue, budget *opBudget) error {
	if !budget.take() {
		return errBudgetExhausted
	}
	if err := s.gh.RemoveLabel(ctx, issue.RepoFullName, issue.Number, s.policy.StaleLabel); err != nil {
		return err
	}

	run.Unmarked++
	return s.actionStore.Insert(ctx, model.TriageAction{
		RunID:        run.ID,
		RepoFullName: issue.RepoFullName,
		IssueNumber:  issue.Number,
		Kind:         model.ActionUnmarked,
		Detail:       "activity since stale mark",
		CreatedAt:    s.clock(),
	})
}

// close closes a stale issue whose grace period has elapsed.
func (s *StaleService) close(ctx context.Context, run *model.TriageRun, issue model.Issue, markTime, now time.Time, budget *opBudget) error {
	if !budget.take() {
		return errBudgetExhausted
	}
	if err := s.gh.CloseIssue(ctx, issue.RepoFullName, issue.Number, s.policy.CloseReason); err != nil {
		return err
	}

	run.Closed++
	return s.actionStore.Insert(ctx, model.TriageAction{
		RunID:        run.ID,
		RepoFullName: issue.RepoFullName,
		IssueNumber:  issue.Number,
		Kind:         model.ActionClosed,
		Detail:       fmt.Sprintf("stale since %s", markTime.UTC().Format(time.RFC3339)),
		CreatedAt:    now,
	})
}

// record forwards run counters to the metrics recorder.
func (s *StaleService) record(run *model.TriageRun) {
	outcome := "ok"
	switch {
	case run.Error != "":
		outcome = "error"
	case run.BudgetHit:
		outcome = "budget_exhausted"
	}

	s.recorder.RunCompleted(string(run.Trigger), outcome, run.Duration())
	s.recorder.IssuesMarked(run.Marked)
	s.recorder.IssuesUnmarked(run.Unmarked)
	s.recorder.IssuesClosed(run.Closed)
	s.recorder.CommentsPosted(run.Commented)
	s.recorder.OperationsUsed(run.OperationsUsed)
}

// daysToDuration converts a whole-day threshold to a duration.
func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
