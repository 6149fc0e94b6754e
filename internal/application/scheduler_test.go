package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stalekeeper/internal/application"
)

func TestScheduler_ScheduleStalePass(t *testing.T) {
	sched, err := application.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	svc, _ := newTestStaleService(&mockIssueClient{}, &mockActionStore{}, testStalePolicy())

	jobID, err := sched.ScheduleStalePass("30 1 * * *", svc)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)
}

func TestScheduler_RejectsInvalidCron(t *testing.T) {
	sched, err := application.NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	svc, _ := newTestStaleService(&mockIssueClient{}, &mockActionStore{}, testStalePolicy())

	_, err = sched.ScheduleStalePass("not a cron expression", svc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule stale pass")
}
