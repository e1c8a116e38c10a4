package services

import (
	"context"
	"fmt"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"
)

// OfferService handles direct purchase proposals outside the bidding ladder.
type OfferService struct {
	offerRepo      domain.OfferRepository
	auctionRepo    domain.AuctionRepository
	userRepo       domain.UserRepository
	auctionManager *AuctionManager
	log            logger.Logger
}

func NewOfferService(
	offerRepo domain.OfferRepository,
	auctionRepo domain.AuctionRepository,
	userRepo domain.UserRepository,
	auctionManager *AuctionManager,
	log logger.Logger,
) *OfferService {
	return &OfferService{
		offerRepo:      offerRepo,
		auctionRepo:    auctionRepo,
		userRepo:       userRepo,
		auctionManager: auctionManager,
		log:            log,
	}
}

func (s *OfferService) MakeOffer(ctx context.Context, auctionID, buyerID string, amount float64) (*domain.Offer, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: offer amount must be positive", domain.ErrInvalidInput)
	}

	auction, err := s.auctionRepo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != domain.AuctionActive {
		return nil, domain.ErrAuctionNotActive
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

	now := time.Now()
	offer := &domain.Offer{
		ID:        utils.GenerateID("offer"),
		AuctionID: auctionID,
		BuyerID:   buyerID,
		Amount:    amount,
		Status:    domain.OfferPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.offerRepo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}

	s.log.Info("Offer made", "offer_id", offer.ID, "auction_id", auctionID,
		"buyer_id", buyerID, "amount", amount)
	return offer, nil
}

// RespondToOffer lets the seller accept or reject a pending offer. Accepting
// ends the auction early at the offer amount and rejects its siblings.
func (s *OfferService) RespondToOffer(ctx context.Context, offerID, sellerID string, accept bool) (*domain.Offer, error) {
	offer, err := s.offerRepo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != domain.OfferPending {
		return nil, domain.ErrOfferNotPending
	}

	auction, err := s.auctionRepo.GetAuction(ctx, offer.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.SellerID != sellerID {
		return nil, domain.ErrForbidden
	}

	if !accept {
		if err := s.offerRepo.UpdateOfferStatus(ctx, offerID, domain.OfferRejected); err != nil {
			return nil, err
		}
		offer.Status = domain.OfferRejected
		s.log.Info("Offer rejected", "offer_id", offerID, "auction_id", offer.AuctionID)
		return offer, nil
	}

	if err := s.auctionManager.FinalizeSale(ctx, offer.AuctionID, domain.AuctionSold, offer.BuyerID, offer.Amount); err != nil {
		return nil, err
	}

	if err := s.offerRepo.UpdateOfferStatus(ctx, offerID, domain.OfferAccepted); err != nil {
		return nil, err
	}
	offer.Status = domain.OfferAccepted

	if err := s.offerRepo.RejectPendingOffers(ctx, offer.AuctionID, offerID); err != nil {
		s.log.Error("Failed to reject sibling offers", "auction_id", offer.AuctionID, "error", err)
	}

	s.log.Info("Offer accepted", "offer_id", offerID, "auction_id", offer.AuctionID,
		"buyer_id", offer.BuyerID, "amount", offer.Amount)
	return offer, nil
}

func (s *OfferService) WithdrawOffer(ctx context.Context, offerID, buyerID string) error {
	offer, err := s.offerRepo.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.BuyerID != buyerID {
		return domain.ErrForbidden
	}
	if offer.Status != domain.OfferPending {
		return domain.ErrOfferNotPending
	}

	return s.offerRepo.UpdateOfferStatus(ctx, offerID, domain.OfferWithdrawn)
}

func (s *OfferService) GetOffersForAuction(ctx context.Context, auctionID string) ([]*domain.Offer, error) {
	return s.offerRepo.GetOffersForAuction(ctx, auctionID)
}
