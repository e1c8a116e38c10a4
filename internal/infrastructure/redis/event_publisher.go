package redis

import (
	"context"
	"encoding/json"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/go-redis/redis/v8"
)

const bidEventsChannel = "bid_events"

type EventPublisher struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

func (r *EventPublisher) PublishBidEvent(ctx context.Context, event *domain.BidEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, bidEventsChannel, payload).Err()
}
