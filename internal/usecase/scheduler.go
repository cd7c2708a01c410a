package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/akashaba/stock-tracker-app/internal/ports"
	"github.com/akashaba/stock-tracker-app/internal/workflow"
)

// Scheduler binds the cron driver to the digest pipeline so periodic ticks
// produce the same workflow runs as ad-hoc events.
type Scheduler struct {
	driver ports.Scheduler
	digest *DigestPipeline
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring digest job.
func NewScheduler(driver ports.Scheduler, digest *DigestPipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, digest: digest, logger: logger}
}

// Start registers the digest run with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.digest == nil {
		return nil
	}

	job := func(firedAt time.Time) {
		run := s.digest.Run(ctx, workflow.CronTrigger(firedAt))
		s.logger.Info("scheduled digest finished",
			"status", string(run.Status),
			"steps", len(run.Steps))
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
