package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
)

// CommissionCalculator maps an auction category and a sale amount to the
// marketplace fee. Categories without a configured policy fall back to the
// default rate, uncapped.
type CommissionCalculator struct {
	categories  domain.CategoryRepository
	defaultRate float64
}

func NewCommissionCalculator(categories domain.CategoryRepository, defaultRate float64) *CommissionCalculator {
	return &CommissionCalculator{
		categories:  categories,
		defaultRate: defaultRate,
	}
}

// Calculate returns the commission owed on amount for the given category.
func (c *CommissionCalculator) Calculate(ctx context.Context, category string, amount float64) (float64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: negative sale amount", domain.ErrInvalidInput)
	}

	commission, err := c.categories.GetCommission(ctx, category)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return ApplyRate(amount, c.defaultRate, 0), nil
		}
		return 0, err
	}

	if commission.Rate < 0 || commission.CapAmount < 0 {
		return 0, fmt.Errorf("%w: commission policy for %q", domain.ErrInvalidInput, category)
	}

	return ApplyRate(amount, commission.Rate, commission.CapAmount), nil
}

// ApplyRate computes a percentage fee, capped when cap is positive.
func ApplyRate(amount, rate, cap float64) float64 {
	fee := amount * rate / 100
	if cap > 0 && fee > cap {
		return cap
	}
	return fee
}
