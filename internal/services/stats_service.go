package services

import (
	"context"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

// StatsService serves dashboard numbers straight from the aggregation
// queries; nothing is cached.
type StatsService struct {
	stats domain.StatsRepository
}

func NewStatsService(stats domain.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

type MarketplaceReport struct {
	Summary    *domain.MarketplaceStats `json:"summary"`
	Categories []*domain.CategoryStats  `json:"categories"`
}

func (s *StatsService) MarketplaceReport(ctx context.Context) (*MarketplaceReport, error) {
	summary, err := s.stats.MarketplaceStats(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.stats.CategoryBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	return &MarketplaceReport{
		Summary:    summary,
		Categories: categories,
	}, nil
}

func (s *StatsService) UserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	return s.stats.UserStats(ctx, userID)
}
