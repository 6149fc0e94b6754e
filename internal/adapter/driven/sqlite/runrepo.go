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
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Begin inserts a new in-flight run and returns it with its ID assigned.
func (r *RunRepo) Begin(ctx context.Context, run model.TriageRun) (*model.TriageRun, error) {
	const query = `
		INSERT INTO triage_runs (trigger_kind, repo_full_name, started_at)
		VALUES (?, ?, ?)
	`

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query, string(run.Trigger), run.RepoFullName, startedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("insert triage run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("triage run insert id: %w", err)
	}

	run.ID = id
	run.StartedAt = startedAt
	return &run, nil
}

// Finish records the run's counters, finish time, and error.
func (r *RunRepo) Finish(ctx context.Context, run model.TriageRun) error {
	const query = `
		UPDATE triage_runs
		SET finished_at = ?, marked = ?, unmarked = ?, closed = ?, commented = ?,
		    operations_used = ?, budget_hit = ?, error = ?
		WHERE id = ?
	`

	finishedAt := run.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	budgetHit := 0
	if run.BudgetHit {
		budgetHit = 1
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		finishedAt.UTC(), run.Marked, run.Unmarked, run.Closed, run.Commented,
		run.OperationsUsed, budgetHit, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish triage run %d: %w", run.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish triage run %d: %w", run.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("finish triage run %d: run not found", run.ID)
	}

	return nil
}

// GetByID returns the run with the given ID, or nil if it does not exist.
func (r *RunRepo) GetByID(ctx context.Context, id int64) (*model.TriageRun, error) {
	const query = `
		SELECT id, trigger_kind, repo_full_name, started_at, finished_at,
		       marked, unmarked, closed, commented, operations_used, budget_hit, error
		FROM triage_runs
		WHERE id = ?
	`

	run, err := scanTriageRun(r.db.Reader.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get triage run %d: %w", id, err)
	}

	return run, nil
}

// ListRecent returns the most recent runs, newest first, up to limit.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]model.TriageRun, error) {
	const query = `
		SELECT id, trigger_kind, repo_full_name, started_at, finished_at,
		       marked, unmarked, closed, commented, operations_used, budget_hit, error
		FROM triage_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list triage runs: %w", err)
	}
	defer rows.Close()

	var runs []model.TriageRun
	for rows.Next() {
		run, err := scanTriageRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan triage run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triage runs: %w", err)
	}

	return runs, nil
}

func scanTriageRun(s scanner) (*model.TriageRun, error) {
	var run model.TriageRun
	var trigger string
	var startedAt string
	var finishedAt sql.NullString
	var budgetHit int

	err := s.Scan(
		&run.ID, &trigger, &run.RepoFullName, &startedAt, &finishedAt,
		&run.Marked, &run.Unmarked, &run.Closed, &run.Commented,
		&run.OperationsUsed, &budgetHit, &run.Error,
	)
	if err != nil {
		return nil, err
	}

	run.Trigger = model.TriggerKind(trigger)
	run.BudgetHit = budgetHit != 0

	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt, err = parseTime(finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}

	return &run, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized datetime format %q", s)
}
