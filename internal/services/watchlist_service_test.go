package services

import (
	"context"
	"sync"
	"testing"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/stretchr/testify/require"
)

type memWatchlistRepo struct {
	mu       sync.Mutex
	entries  map[string]bool // auctionID+"/"+userID
	comments []*domain.Comment
}

func newMemWatchlistRepo() *memWatchlistRepo {
	return &memWatchlistRepo{entries: make(map[string]bool)}
}

func (r *memWatchlistRepo) AddEntry(_ context.Context, entry *domain.WatchlistEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entry.AuctionID + "/" + entry.UserID
	if r.entries[key] {
		return false, nil
	}
	r.entries[key] = true
	return true, nil
}

func (r *memWatchlistRepo) RemoveEntry(_ context.Context, auctionID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := auctionID + "/" + userID
	if !r.entries[key] {
		return false, nil
	}
	delete(r.entries, key)
	return true, nil
}

func (r *memWatchlistRepo) SaveComment(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *comment
	r.comments = append(r.comments, &copied)
	return nil
}

func (r *memWatchlistRepo) GetCommentsForAuction(_ context.Context, auctionID string) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.AuctionID == auctionID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func TestWatchUnwatch(t *testing.T) {
	ctx := context.Background()
	auctionRepo := newMemAuctionRepo(activeAuction())
	svc := NewWatchlistService(newMemWatchlistRepo(), auctionRepo)

	require.NoError(t, svc.Watch(ctx, "auction-1", "user-1"))

	// Watching twice must not double-count.
	require.NoError(t, svc.Watch(ctx, "auction-1", "user-1"))

	auction, err := auctionRepo.GetAuction(ctx, "auction-1")
	require.NoError(t, err)
	require.Equal(t, 1, auction.WatchCount)

	require.NoError(t, svc.Unwatch(ctx, "auction-1", "user-1"))

	auction, err = auctionRepo.GetAuction(ctx, "auction-1")
	require.NoError(t, err)
	require.Equal(t, 0, auction.WatchCount)

	// Unwatching again must not push the count negative.
	require.NoError(t, svc.Unwatch(ctx, "auction-1", "user-1"))

	auction, err = auctionRepo.GetAuction(ctx, "auction-1")
	require.NoError(t, err)
	require.Equal(t, 0, auction.WatchCount)
}

func TestWatchUnknownAuction(t *testing.T) {
	svc := NewWatchlistService(newMemWatchlistRepo(), newMemAuctionRepo())
	require.ErrorIs(t, svc.Watch(context.Background(), "missing", "user-1"), domain.ErrAuctionNotFound)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	svc := NewWatchlistService(newMemWatchlistRepo(), newMemAuctionRepo(activeAuction()))

	comment, err := svc.AddComment(ctx, "auction-1", "user-1", "Any service history?")
	require.NoError(t, err)
	require.NotEmpty(t, comment.ID)

	comments, err := svc.GetComments(ctx, "auction-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "Any service history?", comments[0].Body)

	_, err = svc.AddComment(ctx, "auction-1", "user-1", "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
