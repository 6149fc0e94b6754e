package driven

import (
	"context"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// IssueClient defines the driven port for the GitHub API.
// Read methods fetch issues and releases; write methods mutate issue state.
type IssueClient interface {
	// Read methods

	// ListOpenIssues returns all open issues for the repository. When labels
	// is non-empty the result is filtered server-side to issues carrying all
	// of the given labels. Pull requests are excluded.
	ListOpenIssues(ctx context.Context, repoFullName string, labels []string) ([]model.Issue, error)
	// ListReleases returns the repository's releases, newest first.
	ListReleases(ctx context.Context, repoFullName string) ([]model.Release, error)

	// Write methods

	// CreateComment posts a comment on an issue.
	CreateComment(ctx context.Context, repoFullName string, issueNumber int, body string) error
	// AddLabels applies labels to an issue, preserving existing ones.
	AddLabels(ctx context.Context, repoFullName string, issueNumber int, labels []string) error
	// RemoveLabel removes a single label from an issue. Removing a label the
	// issue does not carry is not an error.
	RemoveLabel(ctx context.Context, repoFullName string, issueNumber int, label string) error
	// CloseIssue closes an issue with the given state reason.
	CloseIssue(ctx context.Context, repoFullName string, issueNumber int, reason model.CloseReason) error
}
