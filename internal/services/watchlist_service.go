package services

import (
	"context"
	"fmt"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"
)

// WatchlistService covers the watch/unwatch and comment flows hanging off an
// auction page.
type WatchlistService struct {
	watchlist   domain.WatchlistRepository
	auctionRepo domain.AuctionRepository
}

func NewWatchlistService(watchlist domain.WatchlistRepository, auctionRepo domain.AuctionRepository) *WatchlistService {
	return &WatchlistService{
		watchlist:   watchlist,
		auctionRepo: auctionRepo,
	}
}

func (s *WatchlistService) Watch(ctx context.Context, auctionID, userID string) error {
	if _, err := s.auctionRepo.GetAuction(ctx, auctionID); err != nil {
		return err
	}

	entry := &domain.WatchlistEntry{
		ID:        utils.GenerateID("watch"),
		AuctionID: auctionID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	added, err := s.watchlist.AddEntry(ctx, entry)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	return s.auctionRepo.AdjustWatchCount(ctx, auctionID, 1)
}

func (s *WatchlistService) Unwatch(ctx context.Context, auctionID, userID string) error {
	removed, err := s.watchlist.RemoveEntry(ctx, auctionID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	return s.auctionRepo.AdjustWatchCount(ctx, auctionID, -1)
}

func (s *WatchlistService) AddComment(ctx context.Context, auctionID, userID, body string) (*domain.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: comment body required", domain.ErrInvalidInput)
	}

	if _, err := s.auctionRepo.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        utils.GenerateID("comment"),
		AuctionID: auctionID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.watchlist.SaveComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *WatchlistService) GetComments(ctx context.Context, auctionID string) ([]*domain.Comment, error) {
	return s.watchlist.GetCommentsForAuction(ctx, auctionID)
}
