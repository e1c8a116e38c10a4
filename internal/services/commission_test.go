package services

import (
	"context"
	"testing"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCommissionCalculator_Calculate(t *testing.T) {
	repo := newMemCategoryRepo(
		&domain.Commission{Category: "classic_cars", Rate: 5.0, CapAmount: 2500},
		&domain.Commission{Category: "motorcycles", Rate: 8.0},
		&domain.Commission{Category: "free_listings", Rate: 0},
	)
	calc := NewCommissionCalculator(repo, 5.0)

	tests := []struct {
		name     string
		category string
		amount   float64
		want     float64
		wantErr  error
	}{
		{
			name:     "configured_rate",
			category: "motorcycles",
			amount:   10000,
			want:     800,
		},
		{
			name:     "cap_applies_above_threshold",
			category: "classic_cars",
			amount:   100000, // 5% would be 5000
			want:     2500,
		},
		{
			name:     "cap_not_reached",
			category: "classic_cars",
			amount:   10000,
			want:     500,
		},
		{
			name:     "zero_rate",
			category: "free_listings",
			amount:   50000,
			want:     0,
		},
		{
			name:     "unconfigured_category_falls_back_to_default",
			category: "vans",
			amount:   2000,
			want:     100,
		},
		{
			name:     "zero_amount",
			category: "motorcycles",
			amount:   0,
			want:     0,
		},
		{
			name:     "negative_amount",
			category: "motorcycles",
			amount:   -100,
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(context.Background(), tt.category, tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestApplyRate(t *testing.T) {
	require.Equal(t, 50.0, ApplyRate(1000, 5, 0))
	require.Equal(t, 2500.0, ApplyRate(100000, 5, 2500))
	require.Equal(t, 5000.0, ApplyRate(100000, 5, 0)) // zero cap means uncapped
}
