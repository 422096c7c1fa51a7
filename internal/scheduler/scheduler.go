package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"garment-rental-backend/internal/config"
	"garment-rental-backend/internal/jobs"
	"garment-rental-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner.
// An unparsable schedule is an error.
func NewScheduler(jobRunner *jobs.JobRunner, cfg config.SchedulerConfig) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs(cfg config.SchedulerConfig) error {
	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"ReportOverdueContracts", cfg.OverdueReport, s.jobs.ReportOverdueContracts},
		{"SnapshotStats", cfg.StatsSnapshot, s.jobs.SnapshotStats},
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.fn); err != nil {
			logger.Error("Failed to register job", "job", e.name, "schedule", e.spec, "error", err)
			return fmt.Errorf("register %s: %w", e.name, err)
		}
		logger.Info("Registered job", "job", e.name, "schedule", e.spec)
	}

	logger.Info("All cron jobs registered successfully")
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
