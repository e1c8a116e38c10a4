package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/go-redis/redis/v8"
)

type StateCache struct {
	client *redis.Client
}

func NewStateCache(client *redis.Client) *StateCache {
	return &StateCache{client: client}
}

func (r *StateCache) SetAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	key := fmt.Sprintf("auction:%s:status", auctionID)
	return r.client.Set(ctx, key, int(status), 0).Err()
}

func (r *StateCache) GetAuctionStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, error) {
	key := fmt.Sprintf("auction:%s:status", auctionID)

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.AuctionDraft, nil
		}
		return domain.AuctionDraft, err
	}

	status, err := strconv.Atoi(result)
	if err != nil {
		return domain.AuctionDraft, err
	}

	return domain.AuctionStatus(status), nil
}
