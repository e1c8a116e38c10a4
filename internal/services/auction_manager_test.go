package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/stretchr/testify/require"
)

type managerFixture struct {
	manager     *AuctionManager
	auctionRepo *memAuctionRepo
	paymentRepo *memPaymentRepo
	stateCache  *fakeStateCache
	bidCache    *fakeBidCache
	publisher   *capturingPublisher
	scheduler   *fakeScheduler
	provider    *fakeProvider
	connManager *fakeConnManager
}

func newManagerFixture(auction *domain.Auction, users ...*domain.User) *managerFixture {
	f := &managerFixture{
		auctionRepo: newMemAuctionRepo(auction),
		paymentRepo: newMemPaymentRepo(),
		stateCache:  newFakeStateCache(),
		bidCache:    newFakeBidCache(),
		publisher:   &capturingPublisher{},
		scheduler:   newFakeScheduler(),
		provider:    &fakeProvider{},
		connManager: &fakeConnManager{},
	}

	calc := NewCommissionCalculator(newMemCategoryRepo(), 5.0)
	orchestrator := NewPaymentOrchestrator(f.paymentRepo, newMemUserRepo(users...), f.provider, calc, 250.0, nopLogger{})

	f.manager = NewAuctionManager(
		f.auctionRepo, f.stateCache, f.bidCache, f.publisher,
		f.scheduler, orchestrator, stubPolicy{}, f.connManager, nopLogger{})
	return f
}

func TestCreateAuction_Validation(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture(&domain.Auction{ID: "unused"})

	tests := []struct {
		name  string
		input CreateAuctionInput
	}{
		{
			name: "zero_start_price",
			input: CreateAuctionInput{
				SellerID: "seller-1", Category: "vans", Title: "Transit",
				EndTime: time.Now().Add(time.Hour),
			},
		},
		{
			name: "end_time_in_past",
			input: CreateAuctionInput{
				SellerID: "seller-1", Category: "vans", Title: "Transit",
				StartPrice: 1000, EndTime: time.Now().Add(-time.Hour),
			},
		},
		{
			name: "missing_title",
			input: CreateAuctionInput{
				SellerID: "seller-1", Category: "vans",
				StartPrice: 1000, EndTime: time.Now().Add(time.Hour),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.CreateAuction(ctx, tt.input)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestApproveAuction(t *testing.T) {
	ctx := context.Background()
	endTime := time.Now().Add(time.Hour)
	f := newManagerFixture(&domain.Auction{
		ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
		CurrentPrice: 1000, Status: domain.AuctionDraft, EndTime: endTime,
	})

	require.NoError(t, f.manager.ApproveAuction(ctx, "auction-1"))

	stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
	require.NoError(t, err)
	require.Equal(t, domain.AuctionActive, stored.Status)

	// Bidding state seeded with the banded increment for the start price.
	cached, err := f.bidCache.GetCurrentBid(ctx, "auction-1")
	require.NoError(t, err)
	require.Equal(t, 1000.0, cached.CurrentBid)
	require.Equal(t, 50.0, cached.Increment)

	require.Contains(t, f.scheduler.scheduled, "auction-1")

	// A second approval is an illegal transition.
	require.ErrorIs(t, f.manager.ApproveAuction(ctx, "auction-1"), domain.ErrInvalidTransition)
}

func TestCloseAuction_Resolution(t *testing.T) {
	ctx := context.Background()

	t.Run("sold_with_standing_bidder", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", Category: "classic_cars",
			StartPrice: 1000, CurrentPrice: 4500, CurrentBidderID: "bidder-1",
			Status: domain.AuctionActive, EndTime: time.Now(),
		}, verifiedBidder("bidder-1"))

		require.NoError(t, f.manager.CloseAuction(ctx, "auction-1"))

		stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.Equal(t, domain.AuctionSold, stored.Status)
		require.Equal(t, "bidder-1", stored.WinnerID)
		require.Equal(t, 4500.0, stored.FinalPrice)

		// Winner charged the default 5% commission as a fresh charge (no hold).
		require.Equal(t, 1, f.provider.charges)

		require.True(t, f.scheduler.canceled["auction-1"])
		require.Contains(t, f.connManager.closed, "auction-1")
		require.Len(t, f.publisher.byType(domain.AuctionClosed), 1)
	})

	t.Run("reserve_not_met", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", ReservePrice: 10000,
			StartPrice: 1000, CurrentPrice: 4500, CurrentBidderID: "bidder-1",
			Status: domain.AuctionActive, EndTime: time.Now(),
		}, verifiedBidder("bidder-1"))

		require.NoError(t, f.manager.CloseAuction(ctx, "auction-1"))

		stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.Equal(t, domain.AuctionReserveNotMet, stored.Status)
		require.Empty(t, stored.WinnerID)
		require.Zero(t, f.provider.charges)
	})

	t.Run("ended_without_bids", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1",
			StartPrice: 1000, CurrentPrice: 1000,
			Status: domain.AuctionActive, EndTime: time.Now(),
		})

		require.NoError(t, f.manager.CloseAuction(ctx, "auction-1"))

		stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.Equal(t, domain.AuctionEnded, stored.Status)
	})

	t.Run("idempotent_on_settled_auction", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1",
			StartPrice: 1000, CurrentPrice: 4500, CurrentBidderID: "bidder-1",
			Status: domain.AuctionActive, EndTime: time.Now(),
		}, verifiedBidder("bidder-1"))

		require.NoError(t, f.manager.CloseAuction(ctx, "auction-1"))
		require.NoError(t, f.manager.CloseAuction(ctx, "auction-1"))

		// The winner is only charged once.
		require.Equal(t, 1, f.provider.charges)
		require.Len(t, f.publisher.byType(domain.AuctionClosed), 1)
	})
}

// staleStatusAuctionRepo reports the auction as active on reads even after a
// terminal write landed, simulating a finalization whose status check raced
// another sale.
type staleStatusAuctionRepo struct {
	*memAuctionRepo
}

func (r *staleStatusAuctionRepo) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	auction, err := r.memAuctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	auction.Status = domain.AuctionActive
	return auction, nil
}

func TestFinalizeSale(t *testing.T) {
	ctx := context.Background()

	t.Run("not_active", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 1000, Status: domain.AuctionEnded, EndTime: time.Now(),
		})

		err := f.manager.FinalizeSale(ctx, "auction-1", domain.AuctionSoldBuyNow, "buyer-1", 5000)
		require.ErrorIs(t, err, domain.ErrAuctionNotActive)
	})

	t.Run("loses_conditional_flip", func(t *testing.T) {
		// The row is already sold; only the conditional write catches it.
		repo := &staleStatusAuctionRepo{newMemAuctionRepo(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 1000, BuyNowPrice: 5000, Status: domain.AuctionSoldBuyNow,
			WinnerID: "buyer-1", FinalPrice: 5000, EndTime: time.Now().Add(time.Hour),
		})}
		provider := &fakeProvider{}
		calc := NewCommissionCalculator(newMemCategoryRepo(), 5.0)
		orchestrator := NewPaymentOrchestrator(
			newMemPaymentRepo(), newMemUserRepo(verifiedBidder("buyer-2")),
			provider, calc, 250.0, nopLogger{})
		manager := NewAuctionManager(
			repo, newFakeStateCache(), newFakeBidCache(), &capturingPublisher{},
			newFakeScheduler(), orchestrator, stubPolicy{}, &fakeConnManager{}, nopLogger{})

		err := manager.FinalizeSale(ctx, "auction-1", domain.AuctionSoldBuyNow, "buyer-2", 5000)
		require.ErrorIs(t, err, domain.ErrAuctionNotActive)

		// The first sale is untouched and the loser is never charged.
		stored, err := repo.memAuctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.Equal(t, "buyer-1", stored.WinnerID)
		require.Zero(t, provider.charges)
		require.Zero(t, provider.captures)
	})
}

func TestCancelAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel_active_listing", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 1000, Status: domain.AuctionActive, EndTime: time.Now().Add(time.Hour),
		})

		require.NoError(t, f.manager.CancelAuction(ctx, "auction-1"))

		stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.Equal(t, domain.AuctionCancelled, stored.Status)
		require.True(t, f.scheduler.canceled["auction-1"])
	})

	t.Run("cannot_cancel_sold_auction", func(t *testing.T) {
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 4500, Status: domain.AuctionSold, EndTime: time.Now(),
		})

		require.ErrorIs(t, f.manager.CancelAuction(ctx, "auction-1"), domain.ErrInvalidTransition)
	})
}

func TestCheckAndExtendAuction(t *testing.T) {
	ctx := context.Background()

	t.Run("extends_inside_window", func(t *testing.T) {
		endTime := time.Now().Add(10 * time.Second)
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 1000, Status: domain.AuctionActive, EndTime: endTime,
		})

		require.NoError(t, f.manager.CheckAndExtendAuction(ctx, "auction-1", 30*time.Second))

		stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.True(t, stored.EndTime.After(endTime))
		require.Len(t, f.publisher.byType(domain.AuctionExtension), 1)
	})

	t.Run("no_op_outside_window", func(t *testing.T) {
		endTime := time.Now().Add(10 * time.Minute)
		f := newManagerFixture(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 1000, Status: domain.AuctionActive, EndTime: endTime,
		})

		require.NoError(t, f.manager.CheckAndExtendAuction(ctx, "auction-1", 30*time.Second))

		stored, err := f.auctionRepo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.Equal(t, endTime.Unix(), stored.EndTime.Unix())
		require.Empty(t, f.publisher.byType(domain.AuctionExtension))
	})

	t.Run("publish_failure_does_not_block_extension", func(t *testing.T) {
		endTime := time.Now().Add(10 * time.Second)
		repo := newMemAuctionRepo(&domain.Auction{
			ID: "auction-1", SellerID: "seller-1", StartPrice: 1000,
			CurrentPrice: 1000, Status: domain.AuctionActive, EndTime: endTime,
		})
		calc := NewCommissionCalculator(newMemCategoryRepo(), 5.0)
		orchestrator := NewPaymentOrchestrator(
			newMemPaymentRepo(), newMemUserRepo(), &fakeProvider{}, calc, 250.0, nopLogger{})
		manager := NewAuctionManager(
			repo, newFakeStateCache(), newFakeBidCache(), &failingPublisher{},
			newFakeScheduler(), orchestrator, stubPolicy{}, &fakeConnManager{}, nopLogger{})

		require.NoError(t, manager.CheckAndExtendAuction(ctx, "auction-1", 30*time.Second))

		stored, err := repo.GetAuction(ctx, "auction-1")
		require.NoError(t, err)
		require.True(t, stored.EndTime.After(endTime))
	})
}

type failingPublisher struct{}

func (failingPublisher) PublishBidEvent(context.Context, *domain.BidEvent) error {
	return errors.New("publisher down")
}
