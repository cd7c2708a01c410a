package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akashaba/stock-tracker-app/internal/ports"
)

// CronScheduler runs jobs on a cron expression in a configured location.
type CronScheduler struct {
	spec string
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from a standard 5-field cron spec.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, cron: cron.New(cron.WithLocation(loc))}
}

// Start registers the job and begins the schedule.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if _, err := c.cron.AddFunc(c.spec, func() { job(time.Now()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}
	c.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running job to finish, bounded by
// ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
