package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// CreateComment posts a comment on an issue.
func (c *Client) CreateComment(ctx context.Context, repoFullName string, issueNumber int, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Issues.CreateComment(ctx, owner, repo, issueNumber, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("creating comment on %s#%d: %w", repoFullName, issueNumber, err)
	}

	return nil
}

// AddLabels applies labels to an issue, preserving existing ones.
func (c *Client) AddLabels(ctx context.Context, repoFullName string, issueNumber int, labels []string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Issues.AddLabelsToIssue(ctx, owner, repo, issueNumber, labels)
	if err != nil {
		return fmt.Errorf("adding labels to %s#%d: %w", repoFullName, issueNumber, err)
	}

	return nil
}

// RemoveLabel removes a single label from an issue. GitHub responds 404 when
// the issue does not carry the label; that is treated as success so triage
// passes stay idempotent against concurrent label edits.
func (c *Client) RemoveLabel(ctx context.Context, repoFullName string, issueNumber int, label string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, err = c.gh.Issues.RemoveLabelForIssue(ctx, owner, repo, issueNumber, label)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("removing label %q from %s#%d: %w", label, repoFullName, issueNumber, err)
	}

	return nil
}

// CloseIssue closes an issue with the given state reason.
func (c *Client) CloseIssue(ctx context.Context, repoFullName string, issueNumber int, reason model.CloseReason) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, _, err = c.gh.Issues.Edit(ctx, owner, repo, issueNumber, &gh.IssueRequest{
		State:       gh.Ptr("closed"),
		StateReason: gh.Ptr(string(reason)),
	})
	if err != nil {
		return fmt.Errorf("closing %s#%d: %w", repoFullName, issueNumber, err)
	}

	return nil
}
