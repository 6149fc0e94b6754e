package model

import "time"

// Release represents a GitHub release observed by the release watcher.
type Release struct {
	ID          int64
	TagName     string
	Name        string
	URL         string // HTML URL of the release page.
	Draft       bool
	Prerelease  bool
	PublishedAt time.Time
}

// IsPublished reports whether the release should trigger a release-close
// pass. Drafts and prereleases never trigger; only a full published release
// counts, matching a "release: released" event filter.
func (r Release) IsPublished() bool {
	return !r.Draft && !r.Prerelease && !r.PublishedAt.IsZero()
}
