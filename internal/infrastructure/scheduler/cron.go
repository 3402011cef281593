package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"TrendDigest/internal/ports"
)

// CronScheduler drives the daily and weekly pipelines on cron expressions in
// the configured timezone.
type CronScheduler struct {
	cron      *cron.Cron
	dailySpec string
	weekSpec  string
	daily     func(time.Time)
	weekly    func(time.Time)
	started   bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler with both job specs.
func NewCronScheduler(loc *time.Location, dailySpec, weeklySpec string, daily, weekly func(time.Time)) *CronScheduler {
	return &CronScheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		dailySpec: dailySpec,
		weekSpec:  weeklySpec,
		daily:     daily,
		weekly:    weekly,
	}
}

// Start registers both jobs and begins the cron loop.
func (c *CronScheduler) Start(ctx context.Context) error {
	if c.started {
		return nil
	}

	if c.daily != nil && c.dailySpec != "" {
		if _, err := c.cron.AddFunc(c.dailySpec, func() { c.daily(time.Now()) }); err != nil {
			return fmt.Errorf("add daily job: %w", err)
		}
	}

	if c.weekly != nil && c.weekSpec != "" {
		if _, err := c.cron.AddFunc(c.weekSpec, func() { c.weekly(time.Now()) }); err != nil {
			return fmt.Errorf("add weekly job: %w", err)
		}
	}

	c.cron.Start()
	c.started = true

	go func() {
		<-ctx.Done()
		c.cron.Stop()
	}()

	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if !c.started {
		return nil
	}
	c.started = false

	stopped := c.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
