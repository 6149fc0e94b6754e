package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// Scheduler wraps a gocron scheduler that fires the stale pass on its cron
// schedule.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{scheduler: s}, nil
}

// ScheduleStalePass registers the stale pass on the given cron expression.
// Returns the job ID for later management.
func (s *Scheduler) ScheduleStalePass(cronExpr string, staleSvc *StaleService) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func(ctx context.Context) {
			if _, err := staleSvc.Run(ctx, model.TriggerSchedule); err != nil {
				slog.Error("scheduled stale pass failed", "error", err)
			}
		}),
		gocron.WithName("stale-pass"),
	)
	if err != nil {
		return "", fmt.Errorf("schedule stale pass on %q: %w", cronExpr, err)
	}

	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("scheduler starting")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("scheduler stopping")
	return s.scheduler.Shutdown()
}
