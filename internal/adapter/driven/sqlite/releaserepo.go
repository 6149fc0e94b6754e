package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReleaseStore = (*ReleaseRepo)(nil)

// ReleaseRepo is the SQLite implementation of the ReleaseStore port interface.
type ReleaseRepo struct {
	db *DB
}

// NewReleaseRepo creates a new ReleaseRepo backed by the given DB.
func NewReleaseRepo(db *DB) *ReleaseRepo {
	return &ReleaseRepo{db: db}
}

// Seen reports whether the release ID was already processed for the repository.
func (r *ReleaseRepo) Seen(ctx context.Context, repoFullName string, releaseID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM seen_releases WHERE repo_full_name = ? AND release_id = ?`

	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query, repoFullName, releaseID).Scan(&count); err != nil {
		return false, fmt.Errorf("check seen release %d for %s: %w", releaseID, repoFullName, err)
	}

	return count > 0, nil
}

// MarkSeen records the release as processed. Marking an already-seen release
// is a no-op.
func (r *ReleaseRepo) MarkSeen(ctx context.Context, repoFullName string, releaseID int64, tagName string) error {
	const query = `
		INSERT INTO seen_releases (repo_full_name, release_id, tag_name, seen_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_full_name, release_id) DO NOTHING
	`

	_, err := r.db.Writer.ExecContext(ctx, query, repoFullName, releaseID, tagName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark release %d seen for %s: %w", releaseID, repoFullName, err)
	}

	return nil
}

// HasAny reports whether any release has ever been recorded for the repository.
func (r *ReleaseRepo) HasAny(ctx context.Context, repoFullName string) (bool, error) {
	const query = `SELECT COUNT(*) FROM seen_releases WHERE repo_full_name = ?`

	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query, repoFullName).Scan(&count); err != nil {
		return false, fmt.Errorf("count seen releases for %s: %w", repoFullName, err)
	}

	return count > 0, nil
}
