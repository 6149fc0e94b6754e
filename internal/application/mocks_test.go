package application_test

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// --- Mock implementations of the driven ports ---

type commentCall struct {
	IssueNumber int
	Body        string
}

type labelCall struct {
	IssueNumber int
	Labels      []string
}

type closeCall struct {
	IssueNumber int
	Reason      model.CloseReason
}

type mockIssueClient struct {
	issues   []model.Issue
	releases []model.Release
	listErr  error

	comments      []commentCall
	addedLabels   []labelCall
	removedLabels []labelCall
	closes        []closeCall

	commentErr error
	closeErr   error
}

func (m *mockIssueClient) ListOpenIssues(_ context.Context, _ string, _ []string) ([]model.Issue, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.issues, nil
}

func (m *mockIssueClient) ListReleases(_ context.Context, _ string) ([]model.Release, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.releases, nil
}

func (m *mockIssueClient) CreateComment(_ context.Context, _ string, issueNumber int, body string) error {
	if m.commentErr != nil {
		return m.commentErr
	}
	m.comments = append(m.comments, commentCall{IssueNumber: issueNumber, Body: body})
	return nil
}

func (m *mockIssueClient) AddLabels(_ context.Context, _ string, issueNumber int, labels []string) error {
	m.addedLabels = append(m.addedLabels, labelCall{IssueNumber: issueNumber, Labels: labels})
	return nil
}

func (m *mockIssueClient) RemoveLabel(_ context.Context, _ string, issueNumber int, label string) error {
	m.removedLabels = append(m.removedLabels, labelCall{IssueNumber: issueNumber, Labels: []string{label}})
	return nil
}

func (m *mockIssueClient) CloseIssue(_ context.Context, _ string, issueNumber int, reason model.CloseReason) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	m.closes = append(m.closes, closeCall{IssueNumber: issueNumber, Reason: reason})
	return nil
}

type mockRunStore struct {
	nextID   int64
	begun    []model.TriageRun
	finished []model.TriageRun
}

func (m *mockRunStore) Begin(_ context.Context, run model.TriageRun) (*model.TriageRun, error) {
	m.nextID++
	run.ID = m.nextID
	m.begun = append(m.begun, run)
	return &run, nil
}

func (m *mockRunStore) Finish(_ context.Context, run model.TriageRun) error {
	m.finished = append(m.finished, run)
	return nil
}

func (m *mockRunStore) GetByID(_ context.Context, id int64) (*model.TriageRun, error) {
	for _, run := range m.finished {
		if run.ID == id {
			return &run, nil
		}
	}
	return nil, nil
}

func (m *mockRunStore) ListRecent(_ context.Context, _ int) ([]model.TriageRun, error) {
	return m.finished, nil
}

type mockActionStore struct {
	inserted []model.TriageAction
	// marks maps "repo#number" to the recorded stale-mark time.
	marks map[string]time.Time
}

func markKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}

func (m *mockActionStore) Insert(_ context.Context, action model.TriageAction) error {
	m.inserted = append(m.inserted, action)
	return nil
}

func (m *mockActionStore) ListByRun(_ context.Context, runID int64) ([]model.TriageAction, error) {
	var actions []model.TriageAction
	for _, a := range m.inserted {
		if a.RunID == runID {
			actions = append(actions, a)
		}
	}
	return actions, nil
}

func (m *mockActionStore) LastStaleMark(_ context.Context, repo string, number int) (*time.Time, error) {
	if m.marks == nil {
		return nil, nil
	}
	if t, ok := m.marks[markKey(repo, number)]; ok {
		return &t, nil
	}
	return nil, nil
}

type mockReleaseStore struct {
	seen map[int64]string
}

func (m *mockReleaseStore) Seen(_ context.Context, _ string, releaseID int64) (bool, error) {
	_, ok := m.seen[releaseID]
	return ok, nil
}

func (m *mockReleaseStore) MarkSeen(_ context.Context, _ string, releaseID int64, tagName string) error {
	if m.seen == nil {
		m.seen = make(map[int64]string)
	}
	m.seen[releaseID] = tagName
	return nil
}

func (m *mockReleaseStore) HasAny(_ context.Context, _ string) (bool, error) {
	return len(m.seen) > 0, nil
}
