package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type statsRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewStatsRepository(db *sql.DB, timeout time.Duration) repository.StatsRepository {
	return &statsRepository{db: db, timeout: timeout}
}

const (
	itemCountsQuery = `SELECT availability, COUNT(*) FROM items GROUP BY availability`

	contractCountsQuery = `SELECT COUNT(*),
	       COUNT(*) FILTER (WHERE return_due_at >= $1 AND return_due_at <= $2),
	       COUNT(*) FILTER (WHERE return_due_at < $1)
	       FROM rental_contracts WHERE status = 'active'`

	revenueQuery = `SELECT COALESCE(SUM(amount_paid) FILTER (WHERE created_at >= $1), 0),
	       COALESCE(SUM(amount_paid) FILTER (WHERE created_at >= $2), 0),
	       COALESCE(SUM(amount_paid) FILTER (WHERE created_at >= $3), 0)
	       FROM rental_contracts`
)

func (r *statsRepository) Compute(ctx context.Context, w domain.StatsWindow) (*domain.Stats, error) {
	logger.EnterMethod("statsRepository.Compute", "now", w.Now)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin stats snapshot: %w", classify(err))
	}
	defer tx.Rollback()

	stats := &domain.Stats{GeneratedAt: w.Now}

	logger.DatabaseCall("select", itemCountsQuery)
	rows, err := tx.QueryContext(ctx, itemCountsQuery)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", classify(err))
	}
	for rows.Next() {
		var availability domain.Availability
		var n int
		if err := rows.Scan(&availability, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan item counts: %w", classify(err))
		}
		switch availability {
		case domain.AvailabilityAvailable:
			stats.Items.Available = n
		case domain.AvailabilityRented:
			stats.Items.Rented = n
		case domain.AvailabilityMaintenance:
			stats.Items.Maintenance = n
		}
		stats.Items.Total += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count items: %w", classify(err))
	}

	logger.DatabaseCall("select", contractCountsQuery)
	err = tx.QueryRowContext(ctx, contractCountsQuery, w.Now, w.DueSoonUntil).
		Scan(&stats.ActiveContracts, &stats.DueSoon, &stats.Overdue)
	if err != nil {
		return nil, fmt.Errorf("count contracts: %w", classify(err))
	}

	var daily, weekly, monthly decimal.Decimal
	logger.DatabaseCall("select", revenueQuery)
	err = tx.QueryRowContext(ctx, revenueQuery, w.DaySince, w.WeekSince, w.MonthSince).
		Scan(&daily, &weekly, &monthly)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", classify(err))
	}
	stats.Revenue = domain.RevenueWindows{Daily: daily, Weekly: weekly, Monthly: monthly}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("end stats snapshot: %w", classify(err))
	}

	logger.ExitMethod("statsRepository.Compute", "items", stats.Items.Total, "active", stats.ActiveContracts)
	return stats, nil
}
