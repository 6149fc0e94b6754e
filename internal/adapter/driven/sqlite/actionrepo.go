package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
	"github.com/ericfisherdev/stalekeeper/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ActionStore = (*ActionRepo)(nil)

// ActionRepo is the SQLite implementation of the ActionStore port interface.
type ActionRepo struct {
	db *DB
}

// NewActionRepo creates a new ActionRepo backed by the given DB.
func NewActionRepo(db *DB) *ActionRepo {
	return &ActionRepo{db: db}
}

// Insert records one triage action.
func (r *ActionRepo) Insert(ctx context.Context, action model.TriageAction) error {
	const query = `
		INSERT INTO triage_actions (run_id, repo_full_name, issue_number, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	createdAt := action.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		action.RunID, action.RepoFullName, action.IssueNumber,
		string(action.Kind), action.Detail, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert triage action for %s#%d: %w", action.RepoFullName, action.IssueNumber, err)
	}

	return nil
}

// ListByRun returns all actions belonging to a run, oldest first.
func (r *ActionRepo) ListByRun(ctx context.Context, runID int64) ([]model.TriageAction, error) {
	const query = `
		SELECT id, run_id, repo_full_name, issue_number, kind, detail, created_at
		FROM triage_actions
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list actions for run %d: %w", runID, err)
	}
	defer rows.Close()

	var actions []model.TriageAction
	for rows.Next() {
		action, err := scanTriageAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan triage action: %w", err)
		}
		actions = append(actions, *action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triage actions: %w", err)
	}

	return actions, nil
}

// LastStaleMark returns the time the issue was most recently marked stale,
// or nil when the issue is not currently considered marked. An unmark or a
// close recorded after the latest mark supersedes it.
func (r *ActionRepo) LastStaleMark(ctx context.Context, repoFullName string, issueNumber int) (*time.Time, error) {
	const query = `
		SELECT kind, created_at
		FROM triage_actions
		WHERE repo_full_name = ? AND issue_number = ? AND kind IN (?, ?, ?, ?)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var kind, createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query,
		repoFullName, issueNumber,
		string(model.ActionMarkedStale), string(model.ActionUnmarked),
		string(model.ActionClosed), string(model.ActionReleaseClosed),
	).Scan(&kind, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last stale mark for %s#%d: %w", repoFullName, issueNumber, err)
	}

	if model.ActionKind(kind) != model.ActionMarkedStale {
		return nil, nil
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse mark time for %s#%d: %w", repoFullName, issueNumber, err)
	}

	return &t, nil
}

func scanTriageAction(s scanner) (*model.TriageAction, error) {
	var action model.TriageAction
	var kind string
	var createdAt string

	err := s.Scan(
		&action.ID, &action.RunID, &action.RepoFullName, &action.IssueNumber,
		&kind, &action.Detail, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	action.Kind = model.ActionKind(kind)

	action.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &action, nil
}
