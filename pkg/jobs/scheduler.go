package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Schedules holds a cron spec per job. An empty spec leaves the job unscheduled.
type Schedules struct {
	Expiry           string
	TelemetryRefresh string
	Audit            string
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron      *cron.Cron
	jobs      *Jobs
	schedules Schedules
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, schedules Schedules, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	return &Scheduler{
		cron:      c,
		jobs:      jobs,
		schedules: schedules,
		logger:    logger,
	}
}

// Start registers the jobs and starts the cron scheduler. Nothing runs if any spec is invalid.
func (s *Scheduler) Start() error {
	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"credit expiry", s.schedules.Expiry, s.jobs.ExpireCredits},
		{"telemetry refresh", s.schedules.TelemetryRefresh, s.jobs.RefreshTelemetry},
		{"vault audit", s.schedules.Audit, s.jobs.AuditVaults},
	}

	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(e.spec, e.fn); err != nil {
			return fmt.Errorf("failed to schedule %s job: %w", e.name, err)
		}
		s.logger.Info("scheduled job", "job", e.name, "schedule", e.spec)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Len reports how many jobs are scheduled.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
