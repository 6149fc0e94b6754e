// Package metrics records triage outcomes for observability backends.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics can be enabled by swapping in the Prometheus
// implementation at the composition root without touching call sites.
package metrics

import "time"

// Recorder receives triage outcome events.
type Recorder interface {
	// RunCompleted records one finished triage run.
	// outcome is "ok", "error", or "budget_exhausted".
	RunCompleted(trigger string, outcome string, duration time.Duration)
	// IssuesMarked adds to the count of issues newly marked stale.
	IssuesMarked(n int)
	// IssuesUnmarked adds to the count of issues that regained activity.
	IssuesUnmarked(n int)
	// IssuesClosed adds to the count of issues closed by triage.
	IssuesClosed(n int)
	// CommentsPosted adds to the count of comments posted.
	CommentsPosted(n int)
	// OperationsUsed adds to the count of GitHub mutations spent.
	OperationsUsed(n int)
}

// NoopRecorder is the default Recorder; every method does nothing.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) RunCompleted(string, string, time.Duration) {}
func (NoopRecorder) IssuesMarked(int)                           {}
func (NoopRecorder) IssuesUnmarked(int)                         {}
func (NoopRecorder) IssuesClosed(int)                           {}
func (NoopRecorder) CommentsPosted(int)                         {}
func (NoopRecorder) OperationsUsed(int)                         {}
