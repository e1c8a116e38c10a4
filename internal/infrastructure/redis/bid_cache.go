package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/go-redis/redis/v8"
)

type BidCache struct {
	client *redis.Client
}

func NewBidCache(client *redis.Client) *BidCache {
	return &BidCache{client: client}
}

func (r *BidCache) InitializeBidding(ctx context.Context, auctionID string, startingBid, increment float64) error {
	key := fmt.Sprintf("auction:%s", auctionID)

	return r.client.HMSet(ctx, key,
		"current_bid", fmt.Sprintf("%.2f", startingBid),
		"bidder_id", "",
		"increment", fmt.Sprintf("%.2f", increment),
		"last_updated", time.Now().Unix(),
	).Err()
}

// AtomicBidUpdate runs the price comparison and the write in a single Lua
// script, which is what serializes concurrent bids on one auction. Every bid
// must clear the stored price plus the increment, the opening bid included.
func (r *BidCache) AtomicBidUpdate(ctx context.Context, auctionID, userID string, amount float64) (bool, error) {
	luaScript := `
        local auction_key = "auction:" .. KEYS[1]
        local current_amount = redis.call('HGET', auction_key, 'current_bid')
        local increment = redis.call('HGET', auction_key, 'increment')

        if current_amount == false then
            return {0, "auction_not_found"}
        end

        local current = tonumber(current_amount)
        local new_amount = tonumber(ARGV[1])
        local required = tonumber(increment or "50")

        if new_amount >= current + required then
            redis.call('HSET', auction_key,
                'current_bid', ARGV[1],
                'bidder_id', ARGV[2],
                'last_updated', ARGV[3])
            return {1, "accepted"}
        else
            return {0, "insufficient_increment"}
        end
    `

	result, err := r.client.Eval(ctx, luaScript, []string{auctionID},
		fmt.Sprintf("%.2f", amount),
		userID,
		strconv.FormatInt(time.Now().Unix(), 10)).Result()
	if err != nil {
		return false, err
	}

	resultSlice := result.([]interface{})
	return resultSlice[0].(int64) == 1, nil
}

func (r *BidCache) GetCurrentBid(ctx context.Context, auctionID string) (*domain.LocalAuctionCache, error) {
	key := fmt.Sprintf("auction:%s", auctionID)

	result, err := r.client.HMGet(ctx, key, "current_bid", "bidder_id", "increment").Result()
	if err != nil {
		return nil, err
	}

	currentBid := 0.0
	bidderID := ""
	increment := 50.0

	if result[0] != nil {
		currentBid, _ = strconv.ParseFloat(result[0].(string), 64)
	}
	if result[1] != nil {
		bidderID = result[1].(string)
	}
	if result[2] != nil {
		increment, _ = strconv.ParseFloat(result[2].(string), 64)
	}

	return &domain.LocalAuctionCache{
		AuctionID:   auctionID,
		CurrentBid:  currentBid,
		BidderID:    bidderID,
		Increment:   increment,
		LastUpdated: time.Now(),
	}, nil
}
