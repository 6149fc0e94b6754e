package model

// IssueState represents the open/closed state of an issue.
type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

// TriggerKind identifies what started a triage run.
type TriggerKind string

const (
	TriggerSchedule TriggerKind = "schedule" // Cron-scheduled stale pass.
	TriggerRelease  TriggerKind = "release"  // Release-published event.
	TriggerManual   TriggerKind = "manual"   // Manual dispatch (CLI or API).
)

// ActionKind identifies a single mutation performed during a triage run.
type ActionKind string

const (
	ActionMarkedStale   ActionKind = "marked_stale"
	ActionUnmarked      ActionKind = "unmarked"
	ActionClosed        ActionKind = "closed"
	ActionCommented     ActionKind = "commented"
	ActionReleaseClosed ActionKind = "release_closed"
)

// CloseReason is the state reason recorded on GitHub when closing an issue.
type CloseReason string

const (
	CloseReasonCompleted  CloseReason = "completed"
	CloseReasonNotPlanned CloseReason = "not_planned"
)

// Valid reports whether the close reason is one GitHub accepts.
func (r CloseReason) Valid() bool {
	return r == CloseReasonCompleted || r == CloseReasonNotPlanned
}
