package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemCounts struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Rented      int `json:"rented"`
	Maintenance int `json:"maintenance"`
}

type RevenueWindows struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// Stats is the dashboard snapshot computed at GeneratedAt.
type Stats struct {
	Items           ItemCounts     `json:"items"`
	ActiveContracts int            `json:"active_contracts"`
	DueSoon         int            `json:"due_soon"`
	Overdue         int            `json:"overdue"`
	Revenue         RevenueWindows `json:"revenue"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// StatsWindow carries the instants every aggregate is computed against.
type StatsWindow struct {
	Now          time.Time
	DueSoonUntil time.Time
	DaySince     time.Time
	WeekSince    time.Time
	MonthSince   time.Time
}

// NewStatsWindow derives the aggregation boundaries from now.
func NewStatsWindow(now time.Time, dueSoon time.Duration) StatsWindow {
	return StatsWindow{
		Now:          now,
		DueSoonUntil: now.Add(dueSoon),
		DaySince:     now.AddDate(0, 0, -1),
		WeekSince:    now.AddDate(0, 0, -7),
		MonthSince:   now.AddDate(0, 0, -30),
	}
}
