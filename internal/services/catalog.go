package services

import (
	"context"
	"fmt"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"
)

// CatalogService manages the vehicle categories and their commission policy.
type CatalogService struct {
	categories domain.CategoryRepository
	log        logger.Logger
}

func NewCatalogService(categories domain.CategoryRepository, log logger.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		log:        log,
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name required", domain.ErrInvalidInput)
	}

	category := &domain.Category{
		ID:          utils.GenerateID("category"),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	s.log.Info("Category created", "category", name)
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

// SetCommission replaces the fee policy for one category. A cap of zero
// leaves the percentage uncapped.
func (s *CatalogService) SetCommission(ctx context.Context, category string, rate, capAmount float64) (*domain.Commission, error) {
	if category == "" {
		return nil, fmt.Errorf("%w: category required", domain.ErrInvalidInput)
	}
	if rate < 0 || rate > 100 {
		return nil, fmt.Errorf("%w: rate must be between 0 and 100", domain.ErrInvalidInput)
	}
	if capAmount < 0 {
		return nil, fmt.Errorf("%w: cap amount cannot be negative", domain.ErrInvalidInput)
	}

	commission := &domain.Commission{
		Category:  category,
		Rate:      rate,
		CapAmount: capAmount,
		UpdatedAt: time.Now(),
	}

	if err := s.categories.UpsertCommission(ctx, commission); err != nil {
		return nil, err
	}

	s.log.Info("Commission updated", "category", category, "rate", rate, "cap", capAmount)
	return commission, nil
}

func (s *CatalogService) GetCommission(ctx context.Context, category string) (*domain.Commission, error) {
	return s.categories.GetCommission(ctx, category)
}
