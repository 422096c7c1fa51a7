package service

import (
	"context"
	"time"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/repository"
)

const DefaultDueSoonWindow = 72 * time.Hour

type statsService struct {
	repo    repository.StatsRepository
	dueSoon time.Duration
}

// NewStatsService returns the revenue aggregator. Contracts due within
// dueSoon of now count as due soon.
func NewStatsService(repo repository.StatsRepository, dueSoon time.Duration) StatsService {
	if dueSoon <= 0 {
		dueSoon = DefaultDueSoonWindow
	}
	return &statsService{repo: repo, dueSoon: dueSoon}
}

func (s *statsService) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	return s.repo.Compute(ctx, domain.NewStatsWindow(now, s.dueSoon))
}
