package jobs

import (
	"context"

	"garment-rental-backend/internal/logger"

	"github.com/shopspring/decimal"
)

// ReportOverdueContracts logs every active contract past its return date.
// Contracts are not modified; overdue is derived, never stored.
func (jr *JobRunner) ReportOverdueContracts() {
	jr.runWithRecovery("ReportOverdueContracts", func(ctx context.Context) {
		if _, err := jr.reportOverdue(ctx); err != nil {
			logger.Error("Failed to list overdue contracts", "error", err)
		}
	})
}

func (jr *JobRunner) reportOverdue(ctx context.Context) (int, error) {
	now := jr.now()
	contracts, err := jr.services.Contracts.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	outstanding := decimal.Zero
	for _, c := range contracts {
		clientName := ""
		if c.Client != nil {
			clientName = c.Client.FullName
		}
		logger.Warn("Overdue contract",
			"contract_id", c.ID,
			"item", c.ItemName,
			"client", clientName,
			"return_due_at", c.ReturnDueAt,
			"days_late", int(now.Sub(c.ReturnDueAt).Hours()/24),
			"balance", c.Balance().StringFixed(2),
		)
		outstanding = outstanding.Add(c.Balance())
	}

	logger.Info("Overdue contracts reported", "count", len(contracts), "outstanding", outstanding.StringFixed(2))
	return len(contracts), nil
}
