package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
	"github.com/ericfisherdev/stalekeeper/internal/domain/port/driven"
	"github.com/ericfisherdev/stalekeeper/internal/metrics"
)

// ReleaseService watches the repository's releases and, when a new release
// is published, closes the open issues labeled as fixed in that release.
type ReleaseService struct {
	gh           driven.IssueClient
	runStore     driven.RunStore
	actionStore  driven.ActionStore
	releaseStore driven.ReleaseStore
	repo         string
	policy       model.ReleasePolicy
	interval     time.Duration
	recorder     metrics.Recorder
	clock        func() time.Time
	checkCh      chan chan error
}

// NewReleaseService creates a new ReleaseService with all required dependencies.
func NewReleaseService(
	gh driven.IssueClient,
	runStore driven.RunStore,
	actionStore driven.ActionStore,
	releaseStore driven.ReleaseStore,
	repoFullName string,
	policy model.ReleasePolicy,
	interval time.Duration,
) *ReleaseService {
	return &ReleaseService{
		gh:           gh,
		runStore:     runStore,
		actionStore:  actionStore,
		releaseStore: releaseStore,
		repo:         repoFullName,
		policy:       policy,
		interval:     interval,
		recorder:     metrics.NoopRecorder{},
		clock:        time.Now,
		checkCh:      make(chan chan error),
	}
}

// WithRecorder sets the metrics recorder and returns the service for chaining.
func (s *ReleaseService) WithRecorder(r metrics.Recorder) *ReleaseService {
	s.recorder = r
	return s
}

// WithClock overrides the time source; used by tests.
func (s *ReleaseService) WithClock(clock func() time.Time) *ReleaseService {
	s.clock = clock
	return s
}

// Policy returns the policy the service runs with.
func (s *ReleaseService) Policy() model.ReleasePolicy {
	return s.policy
}

// Watch polls for new releases on the configured interval. It runs an
// immediate check, then checks on each tick, and also serves on-demand
// checks. Watch blocks until the context is canceled. It returns immediately
// when the release-close pass is not configured.
func (s *ReleaseService) Watch(ctx context.Context) {
	if !s.policy.Enabled() {
		slog.Info("release-close pass not configured, release watcher disabled")
		return
	}

	if err := s.Check(ctx); err != nil {
		slog.Error("initial release check failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("release watcher stopped")
			return
		case <-ticker.C:
			if err := s.Check(ctx); err != nil {
				slog.Error("release check failed", "error", err)
			}
		case done := <-s.checkCh:
			done <- s.Check(ctx)
		}
	}
}

// CheckNow triggers an immediate release check on the watcher goroutine and
// blocks until it completes or the context is canceled.
func (s *ReleaseService) CheckNow(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.checkCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Check fetches the release list and runs a release-close pass for each
// published release not yet processed. On a fresh database the current
// releases become the baseline and no pass fires.
func (s *ReleaseService) Check(ctx context.Context) error {
	if !s.policy.Enabled() {
		return nil
	}

	releases, err := s.gh.ListReleases(ctx, s.repo)
	if err != nil {
		return err
	}

	hasBaseline, err := s.releaseStore.HasAny(ctx, s.repo)
	if err != nil {
		return err
	}

	if !hasBaseline {
		for _, rel := range releases {
			if err := s.releaseStore.MarkSeen(ctx, s.repo, rel.ID, rel.TagName); err != nil {
				return err
			}
		}
		slog.Info("release baseline recorded", "repo", s.repo, "releases", len(releases))
		return nil
	}

	// Releases arrive newest first; process unseen ones oldest first so
	// comments reference releases in publication order.
	for i := len(releases) - 1; i >= 0; i-- {
		rel := releases[i]
		if !rel.IsPublished() {
			continue
		}

		seen, err := s.releaseStore.Seen(ctx, s.repo, rel.ID)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		if _, err := s.RunPass(ctx, rel); err != nil {
			return err
		}

		if err := s.releaseStore.MarkSeen(ctx, s.repo, rel.ID, rel.TagName); err != nil {
			return err
		}
	}

	return nil
}

// RunPass closes all open issues carrying the release labels, commenting
// with the rendered release message first.
func (s *ReleaseService) RunPass(ctx context.Context, release model.Release) (*model.TriageRun, error) {
	message, err := RenderReleaseMessage(s.policy.Message, ReleaseMessageData{
		ReleaseTag:  release.TagName,
		ReleaseLink: release.URL,
	})
	if err != nil {
		return nil, err
	}

	run, err := s.runStore.Begin(ctx, model.TriageRun{
		Trigger:      model.TriggerRelease,
		RepoFullName: s.repo,
		StartedAt:    s.clock(),
	})
	if err != nil {
		return nil, fmt.Errorf("begin release run: %w", err)
	}

	passErr := s.pass(ctx, run, release, message)

	run.FinishedAt = s.clock()
	if passErr != nil {
		run.Error = passErr.Error()
	}

	if err := s.runStore.Finish(ctx, *run); err != nil {
		return nil, fmt.Errorf("finish release run %d: %w", run.ID, err)
	}

	s.record(run)

	slog.Info("release-close pass complete",
		"repo", s.repo,
		"release", release.TagName,
		"closed", run.Closed,
		"duration", run.Duration().Round(time.Millisecond),
	)

	return run, passErr
}

func (s *ReleaseService) pass(ctx context.Context, run *model.TriageRun, release model.Release, message string) error {
	issues, err := s.gh.ListOpenIssues(ctx, s.repo, s.policy.OnlyLabels)
	if err != nil {
		return err
	}

	for _, issue := range issues {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !issue.HasAllLabels(s.policy.OnlyLabels) {
			continue
		}

		if err := s.closeForRelease(ctx, run, issue, release, message); err != nil {
			slog.Error("release close failed",
				"repo", s.repo, "issue", issue.Number, "release", release.TagName, "error", err)
		}
	}

	return nil
}

func (s *ReleaseService) closeForRelease(ctx context.Context, run *model.TriageRun, issue model.Issue, release model.Release, message string) error {
	if err := s.gh.CreateComment(ctx, issue.RepoFullName, issue.Number, message); err != nil {
		return err
	}
	run.Commented++
	run.OperationsUsed++

	if err := s.gh.CloseIssue(ctx, issue.RepoFullName, issue.Number, s.policy.CloseReason); err != nil {
		return err
	}
	run.Closed++
	run.OperationsUsed++

	return s.actionStore.Insert(ctx, model.TriageAction{
		RunID:        run.ID,
		RepoFullName: issue.RepoFullName,
		IssueNumber:  issue.Number,
		Kind:         model.ActionReleaseClosed,
		Detail:       fmt.Sprintf("released in %s", release.TagName),
		CreatedAt:    s.clock(),
	})
}

// record forwards run counters to the metrics recorder.
func (s *ReleaseService) record(run *model.TriageRun) {
	outcome := "ok"
	if run.Error != "" {
		outcome = "error"
	}

	s.recorder.RunCompleted(string(run.Trigger), outcome, run.Duration())
	s.recorder.IssuesClosed(run.Closed)
	s.recorder.CommentsPosted(run.Commented)
	s.recorder.OperationsUsed(run.OperationsUsed)
}
