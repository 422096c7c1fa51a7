package jobs

import (
	"context"
	"time"

	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/service"
)

const jobTimeout = time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Contracts service.ContractService
	Stats     service.StatsService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services) *JobRunner {
	return &JobRunner{
		services: services,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReportOverdueContracts()
	jr.SnapshotStats()
}
