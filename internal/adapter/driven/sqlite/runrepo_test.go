package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

func TestRunRepo_BeginAndFinish(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	started := time.Date(2026, 8, 27, 1, 30, 0, 0, time.UTC)

	run, err := repo.Begin(ctx, model.TriageRun{
		Trigger:      model.TriggerSchedule,
		RepoFullName: "octocat/hello-world",
		StartedAt:    started,
	})
	require.NoError(t, err)
	require.NotZero(t, run.ID)

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.TriggerSchedule, got.Trigger)
	assert.Equal(t, "octocat/hello-world", got.RepoFullName)
	assert.Equal(t, started, got.StartedAt)
	assert.True(t, got.FinishedAt.IsZero(), "run is still in flight")

	run.FinishedAt = started.Add(42 * time.Second)
	run.Marked = 3
	run.Unmarked = 1
	run.Closed = 2
	run.Commented = 3
	run.OperationsUsed = 9
	run.BudgetHit = true
	require.NoError(t, repo.Finish(ctx, *run))

	got, err = repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Marked)
	assert.Equal(t, 1, got.Unmarked)
	assert.Equal(t, 2, got.Closed)
	assert.Equal(t, 3, got.Commented)
	assert.Equal(t, 9, got.OperationsUsed)
	assert.True(t, got.BudgetHit)
	assert.Empty(t, got.Error)
	assert.Equal(t, 42*time.Second, got.Duration())
}

func TestRunRepo_FinishWithError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	run, err := repo.Begin(ctx, model.TriageRun{
		Trigger:      model.TriggerManual,
		RepoFullName: "octocat/hello-world",
	})
	require.NoError(t, err)

	run.Error = "listing issues failed"
	require.NoError(t, repo.Finish(ctx, *run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "listing issues failed", got.Error)
}

func TestRunRepo_FinishUnknownRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	err := repo.Finish(context.Background(), model.TriageRun{ID: 999})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunRepo_GetByID_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	got, err := repo.GetByID(context.Background(), 12345)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunRepo_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Begin(ctx, model.TriageRun{
			Trigger:      model.TriggerSchedule,
			RepoFullName: "octocat/hello-world",
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	runs, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.Equal(t, base.Add(4*time.Hour), runs[0].StartedAt)
	assert.Equal(t, base.Add(3*time.Hour), runs[1].StartedAt)
	assert.Equal(t, base.Add(2*time.Hour), runs[2].StartedAt)
}
