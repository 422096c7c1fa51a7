package jobs

import (
	"context"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
)

// SnapshotStats logs the dashboard aggregates as of now
func (jr *JobRunner) SnapshotStats() {
	jr.runWithRecovery("SnapshotStats", func(ctx context.Context) {
		if _, err := jr.snapshotStats(ctx); err != nil {
			logger.Error("Failed to compute stats snapshot", "error", err)
		}
	})
}

func (jr *JobRunner) snapshotStats(ctx context.Context) (*domain.Stats, error) {
	stats, err := jr.services.Stats.Stats(ctx, jr.now())
	if err != nil {
		return nil, err
	}

	logger.Info("Stats snapshot",
		"generated_at", stats.GeneratedAt,
		"items_total", stats.Items.Total,
		"items_available", stats.Items.Available,
		"items_rented", stats.Items.Rented,
		"items_maintenance", stats.Items.Maintenance,
		"active_contracts", stats.ActiveContracts,
		"due_soon", stats.DueSoon,
		"overdue", stats.Overdue,
		"revenue_daily", stats.Revenue.Daily.StringFixed(2),
		"revenue_weekly", stats.Revenue.Weekly.StringFixed(2),
		"revenue_monthly", stats.Revenue.Monthly.StringFixed(2),
	)
	return stats, nil
}
