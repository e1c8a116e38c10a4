package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"
)

// Window inside which a landing bid pushes the close out.
const antiSnipeWindow = 30 * time.Second

// BidService is the bid ledger: it validates, serializes and records bids,
// and keeps the derived auction fields in step.
type BidService struct {
	auctionRepo    domain.AuctionRepository
	bidRepo        domain.BidRepository
	userRepo       domain.UserRepository
	bidCache       domain.BidCache
	stateCache     domain.AuctionStateCache
	eventPub       domain.EventPublisher
	orchestrator   *PaymentOrchestrator
	auctionManager *AuctionManager
	policy         BidIncrementPolicy
	localCache     map[string]*domain.LocalAuctionCache
	cacheMutex     sync.RWMutex
	log            logger.Logger
}

func NewBidService(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	userRepo domain.UserRepository,
	bidCache domain.BidCache,
	stateCache domain.AuctionStateCache,
	eventPub domain.EventPublisher,
	orchestrator *PaymentOrchestrator,
	auctionManager *AuctionManager,
	policy BidIncrementPolicy,
	log logger.Logger,
) *BidService {
	return &BidService{
		auctionRepo:    auctionRepo,
		bidRepo:        bidRepo,
		userRepo:       userRepo,
		bidCache:       bidCache,
		stateCache:     stateCache,
		eventPub:       eventPub,
		orchestrator:   orchestrator,
		auctionManager: auctionManager,
		policy:         policy,
		localCache:     make(map[string]*domain.LocalAuctionCache),
		log:            log,
	}
}

// PlaceBid runs the full bid path. The authorization hold is placed before
// the price race so a rejected bid leaves a reusable hold, never a winning
// bid without one.
func (s *BidService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount float64) (*domain.Bid, error) {
	s.log.Info("Placing bid", "auction_id", auctionID, "bidder_id", bidderID, "amount", amount)

	if amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be positive", domain.ErrInvalidInput)
	}

	status, err := s.stateCache.GetAuctionStatus(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if status != domain.AuctionActive {
		return nil, domain.ErrAuctionNotActive
	}

	auction, err := s.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.SellerID == bidderID {
		return nil, domain.ErrOwnAuction
	}

	bidder, err := s.userRepo.GetUserByID(ctx, bidderID)
	if err != nil {
		return nil, err
	}
	if !bidder.PaymentVerified {
		return nil, domain.ErrPaymentMethodRequired
	}

	if _, err := s.orchestrator.AuthorizeBid(ctx, auction, bidder, amount); err != nil {
		return nil, err
	}

	accepted, err := s.bidCache.AtomicBidUpdate(ctx, auctionID, bidderID, amount)
	if err != nil {
		s.log.Error("Failed to update bid", "auction_id", auctionID, "error", err)
		return nil, err
	}
	if !accepted {
		cached, cacheErr := s.currentState(ctx, auctionID)
		if cacheErr == nil {
			return nil, fmt.Errorf("%w: minimum bid is %.2f",
				domain.ErrBidTooLow, s.policy.GetMinimumBid(cached.CurrentBid))
		}
		return nil, domain.ErrBidTooLow
	}

	bid := &domain.Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	if err := s.bidRepo.SaveBid(ctx, bid); err != nil {
		return nil, err
	}

	// Conditional write: an out-of-order higher bid cannot be regressed.
	if _, err := s.auctionRepo.RecordBid(ctx, auctionID, bidderID, amount); err != nil {
		return nil, err
	}

	s.UpdateLocalCache(auctionID, amount, bidderID)

	if err := s.eventPub.PublishBidEvent(ctx, &domain.BidEvent{
		Type:      domain.BidAccepted,
		AuctionID: auctionID,
		UserID:    bidderID,
		Amount:    amount,
		Timestamp: bid.CreatedAt,
	}); err != nil {
		s.log.Error("Failed to publish bid event", "auction_id", auctionID, "error", err)
	}

	go s.checkAuctionExtension(auctionID)

	return bid, nil
}

// BuyNow ends the auction immediately at the listed buy-now price.
func (s *BidService) BuyNow(ctx context.Context, auctionID, buyerID string) (*domain.Bid, error) {
	auction, err := s.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != domain.AuctionActive {
		return nil, domain.ErrAuctionNotActive
	}
	if auction.BuyNowPrice <= 0 {
		return nil, domain.ErrBuyNowUnavailable
	}
	if auction.SellerID == buyerID {
		return nil, domain.ErrOwnAuction
	}

	buyer, err := s.userRepo.GetUserByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if !buyer.PaymentVerified {
		return nil, domain.ErrPaymentMethodRequired
	}

	if err := s.auctionManager.FinalizeSale(ctx, auctionID, domain.AuctionSoldBuyNow, buyerID, auction.BuyNowPrice); err != nil {
		return nil, err
	}

	bid := &domain.Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: auctionID,
		BidderID:  buyerID,
		Amount:    auction.BuyNowPrice,
		BuyNow:    true,
		CreatedAt: time.Now(),
	}
	if err := s.bidRepo.SaveBid(ctx, bid); err != nil {
		return nil, err
	}

	return bid, nil
}

func (s *BidService) GetBidsForAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	return s.bidRepo.GetBidsForAuction(ctx, auctionID)
}

func (s *BidService) currentState(ctx context.Context, auctionID string) (*domain.LocalAuctionCache, error) {
	s.cacheMutex.RLock()
	cached, exists := s.localCache[auctionID]
	s.cacheMutex.RUnlock()
	if exists {
		return cached, nil
	}

	cached, err := s.bidCache.GetCurrentBid(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	s.cacheMutex.Lock()
	s.localCache[auctionID] = cached
	s.cacheMutex.Unlock()

	return cached, nil
}

func (s *BidService) UpdateLocalCache(auctionID string, amount float64, bidderID string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.localCache[auctionID] = &domain.LocalAuctionCache{
		AuctionID:   auctionID,
		CurrentBid:  amount,
		BidderID:    bidderID,
		LastUpdated: time.Now(),
	}
}

func (s *BidService) RemoveFromCache(auctionID string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	delete(s.localCache, auctionID)
}

func (s *BidService) checkAuctionExtension(auctionID string) {
	if err := s.auctionManager.CheckAndExtendAuction(context.Background(), auctionID, antiSnipeWindow); err != nil {
		s.log.Error("Failed to check auction extension", "auction_id", auctionID, "error", err)
	}
}
