package services

import (
	"context"
	"fmt"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"
)

// AuctionManager drives the auction lifecycle through the status transition
// table: draft listings, activation, natural close, buy-now and offer sales,
// and admin cancellation.
type AuctionManager struct {
	auctionRepo     domain.AuctionRepository
	stateCache      domain.AuctionStateCache
	bidCache        domain.BidCache
	eventPub        domain.EventPublisher
	scheduler       domain.AuctionScheduler
	orchestrator    *PaymentOrchestrator
	incrementPolicy BidIncrementPolicy
	connManager     domain.ConnectionManager
	log             logger.Logger
}

func NewAuctionManager(
	auctionRepo domain.AuctionRepository,
	stateCache domain.AuctionStateCache,
	bidCache domain.BidCache,
	eventPub domain.EventPublisher,
	scheduler domain.AuctionScheduler,
	orchestrator *PaymentOrchestrator,
	incrementPolicy BidIncrementPolicy,
	connManager domain.ConnectionManager,
	log logger.Logger,
) *AuctionManager {
	return &AuctionManager{
		auctionRepo:     auctionRepo,
		stateCache:      stateCache,
		bidCache:        bidCache,
		eventPub:        eventPub,
		scheduler:       scheduler,
		orchestrator:    orchestrator,
		incrementPolicy: incrementPolicy,
		connManager:     connManager,
		log:             log,
	}
}

// SetScheduler breaks the construction cycle between manager and scheduler.
func (am *AuctionManager) SetScheduler(scheduler domain.AuctionScheduler) {
	am.scheduler = scheduler
}

type CreateAuctionInput struct {
	SellerID     string
	Category     string
	Title        string
	Description  string
	StartPrice   float64
	ReservePrice float64
	BuyNowPrice  float64
	EndTime      time.Time
}

func (am *AuctionManager) CreateAuction(ctx context.Context, input CreateAuctionInput) (*domain.Auction, error) {
	if input.StartPrice <= 0 {
		return nil, fmt.Errorf("%w: starting price must be positive", domain.ErrInvalidInput)
	}
	if input.EndTime.Before(time.Now()) {
		return nil, fmt.Errorf("%w: end time must be in the future", domain.ErrInvalidInput)
	}
	if input.Category == "" || input.Title == "" {
		return nil, fmt.Errorf("%w: category and title required", domain.ErrInvalidInput)
	}

	now := time.Now()
	auction := &domain.Auction{
		ID:           utils.GenerateID("auction"),
		SellerID:     input.SellerID,
		Category:     input.Category,
		Title:        input.Title,
		Description:  input.Description,
		StartPrice:   input.StartPrice,
		ReservePrice: input.ReservePrice,
		BuyNowPrice:  input.BuyNowPrice,
		CurrentPrice: input.StartPrice,
		Status:       domain.AuctionDraft,
		EndTime:      input.EndTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := am.auctionRepo.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	am.log.Info("Auction created", "auction_id", auction.ID, "seller_id", auction.SellerID)
	return auction, nil
}

// ApproveAuction moves a moderated draft onto the live floor and schedules
// its close.
func (am *AuctionManager) ApproveAuction(ctx context.Context, auctionID string) error {
	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	if err := am.transition(ctx, auction, domain.AuctionActive); err != nil {
		return err
	}

	increment := am.incrementPolicy.GetIncrement(auction.StartPrice)
	if err := am.bidCache.InitializeBidding(ctx, auction.ID, auction.StartPrice, increment); err != nil {
		return err
	}

	if err := am.scheduler.ScheduleAuctionEnd(ctx, auction.ID, auction.EndTime); err != nil {
		return err
	}

	am.log.Info("Auction approved", "auction_id", auction.ID, "end_time", auction.EndTime)
	return nil
}

// CloseAuction settles an active auction at its natural end: reserve unmet
// beats everything, then a standing bidder means sold, otherwise ended.
func (am *AuctionManager) CloseAuction(ctx context.Context, auctionID string) error {
	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	// A close that raced an admin action or ran twice is a no-op.
	if auction.Status != domain.AuctionActive {
		return nil
	}

	resolved := domain.ResolveClose(auction)
	if !auction.Status.CanTransitionTo(resolved) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, auction.Status, resolved)
	}

	if resolved == domain.AuctionSold {
		auction.WinnerID = auction.CurrentBidderID
		auction.FinalPrice = auction.CurrentPrice
		flipped, err := am.auctionRepo.SetWinner(ctx, auction.ID, resolved, auction.WinnerID, auction.FinalPrice)
		if err != nil {
			return err
		}
		if !flipped {
			// A concurrent buy-now or offer acceptance settled it first.
			return nil
		}
	} else {
		if err := am.auctionRepo.UpdateAuctionStatus(ctx, auction.ID, resolved); err != nil {
			return err
		}
	}
	auction.Status = resolved

	if err := am.stateCache.SetAuctionStatus(ctx, auction.ID, resolved); err != nil {
		return err
	}

	if err := am.scheduler.CancelSchedule(ctx, auction.ID); err != nil {
		am.log.Error("Failed to cancel schedule", "auction_id", auction.ID, "error", err)
	}

	if resolved == domain.AuctionSold {
		// A failed capture leaves the hold untouched for admin reconciliation;
		// the auction still settles.
		if _, err := am.orchestrator.ChargeWinner(ctx, auction); err != nil {
			am.log.Error("Failed to charge winner", "auction_id", auction.ID,
				"winner_id", auction.WinnerID, "error", err)
		}
	}

	am.publishClose(ctx, auction)

	am.log.Info("Auction closed", "auction_id", auction.ID, "status", resolved.String(),
		"winner_id", auction.WinnerID, "final_price", auction.FinalPrice)
	return nil
}

// FinalizeSale ends an active auction early for a buy-now purchase or an
// accepted offer.
func (am *AuctionManager) FinalizeSale(ctx context.Context, auctionID string, status domain.AuctionStatus, winnerID string, finalPrice float64) error {
	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	if auction.Status != domain.AuctionActive {
		return domain.ErrAuctionNotActive
	}
	if !auction.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, auction.Status, status)
	}

	flipped, err := am.auctionRepo.SetWinner(ctx, auction.ID, status, winnerID, finalPrice)
	if err != nil {
		return err
	}
	if !flipped {
		// A concurrent finalization won the conditional flip.
		return domain.ErrAuctionNotActive
	}
	auction.Status = status
	auction.WinnerID = winnerID
	auction.FinalPrice = finalPrice

	if err := am.stateCache.SetAuctionStatus(ctx, auction.ID, status); err != nil {
		return err
	}

	if err := am.scheduler.CancelSchedule(ctx, auction.ID); err != nil {
		am.log.Error("Failed to cancel schedule", "auction_id", auction.ID, "error", err)
	}

	if _, err := am.orchestrator.ChargeWinner(ctx, auction); err != nil {
		am.log.Error("Failed to charge winner", "auction_id", auction.ID,
			"winner_id", winnerID, "error", err)
	}

	am.publishClose(ctx, auction)

	am.log.Info("Auction finalized", "auction_id", auction.ID,
		"status", status.String(), "winner_id", winnerID, "final_price", finalPrice)
	return nil
}

// CancelAuction pulls a listing, from moderation or mid-flight.
func (am *AuctionManager) CancelAuction(ctx context.Context, auctionID string) error {
	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	if err := am.transition(ctx, auction, domain.AuctionCancelled); err != nil {
		return err
	}

	if err := am.scheduler.CancelSchedule(ctx, auctionID); err != nil {
		am.log.Error("Failed to cancel schedule", "auction_id", auctionID, "error", err)
	}

	am.publishClose(ctx, auction)

	am.log.Info("Auction cancelled", "auction_id", auctionID)
	return nil
}

// CheckAndExtendAuction pushes the end time out when a bid lands inside the
// anti-snipe window.
func (am *AuctionManager) CheckAndExtendAuction(ctx context.Context, auctionID string, extension time.Duration) error {
	auction, err := am.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	timeUntilEnd := time.Until(auction.EndTime)
	if timeUntilEnd <= 0 || timeUntilEnd > extension {
		return nil
	}

	newEndTime := time.Now().Add(extension)
	if err := am.auctionRepo.UpdateEndTime(ctx, auctionID, newEndTime); err != nil {
		return err
	}

	if err := am.scheduler.RescheduleAuctionEnd(ctx, auctionID, newEndTime); err != nil {
		return err
	}

	if err := am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.AuctionExtension,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	}); err != nil {
		am.log.Error("Failed to publish extension event", "auction_id", auctionID, "error", err)
	}

	am.log.Info("Auction extended", "auction_id", auctionID, "new_end_time", newEndTime)
	return nil
}

func (am *AuctionManager) transition(ctx context.Context, auction *domain.Auction, target domain.AuctionStatus) error {
	if !auction.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, auction.Status, target)
	}

	if err := am.auctionRepo.UpdateAuctionStatus(ctx, auction.ID, target); err != nil {
		return err
	}
	auction.Status = target

	return am.stateCache.SetAuctionStatus(ctx, auction.ID, target)
}

func (am *AuctionManager) publishClose(ctx context.Context, auction *domain.Auction) {
	if err := am.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.AuctionClosed,
		AuctionID: auction.ID,
		UserID:    auction.WinnerID,
		Amount:    auction.FinalPrice,
		Timestamp: time.Now(),
	}); err != nil {
		am.log.Error("Failed to publish close event", "auction_id", auction.ID, "error", err)
	}

	if am.connManager != nil {
		if err := am.connManager.CloseAndUnregisterConnections(auction.ID); err != nil {
			am.log.Error("Failed to close live connections", "auction_id", auction.ID, "error", err)
		}
	}
}
