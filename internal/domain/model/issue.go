package model

import (
	"strings"
	"time"
)

// Issue represents a GitHub issue considered by a triage pass.
// Pull requests are filtered out by the adapter; only true issues reach here.
type Issue struct {
	ID           int64
	Number       int
	RepoFullName string
	Title        string
	Author       string
	State        IssueState
	Labels       []string
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLabel reports whether the issue carries the given label.
// Label comparison is case-insensitive, matching GitHub's behavior.
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// HasAnyLabel reports whether the issue carries at least one of the given labels.
func (i Issue) HasAnyLabel(names []string) bool {
	for _, name := range names {
		if i.HasLabel(name) {
			return true
		}
	}
	return false
}

// HasAllLabels reports whether the issue carries every one of the given labels.
func (i Issue) HasAllLabels(names []string) bool {
	for _, name := range names {
		if !i.HasLabel(name) {
			return false
		}
	}
	return true
}

// DaysSinceLastActivity returns the number of whole days since the issue
// was last updated, measured from now.
func (i Issue) DaysSinceLastActivity(now time.Time) int {
	return int(now.Sub(i.UpdatedAt).Hours() / 24)
}

// InactiveFor reports whether the issue has had no activity for at least
// the given number of days.
func (i Issue) InactiveFor(now time.Time, days int) bool {
	return i.DaysSinceLastActivity(now) >= days
}
