package driven

import "context"

// ReleaseStore remembers which releases have already triggered a
// release-close pass, so each published release fires exactly once.
type ReleaseStore interface {
	// Seen reports whether the release ID was already processed.
	Seen(ctx context.Context, repoFullName string, releaseID int64) (bool, error)
	// MarkSeen records the release as processed.
	MarkSeen(ctx context.Context, repoFullName string, releaseID int64, tagName string) error
	// HasAny reports whether any release has ever been recorded for the
	// repository. Used to detect a fresh database, where existing releases
	// become the baseline instead of firing passes retroactively.
	HasAny(ctx context.Context, repoFullName string) (bool, error)
}
