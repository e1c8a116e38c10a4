package services

import (
	"context"
	"fmt"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
)

// EventListener fans bid events out of the Redis channel into the websocket
// connections held by this instance.
type EventListener struct {
	bidService        *BidService
	broadcaster       domain.AuctionBroadcaster
	connectionManager domain.ConnectionManager
	log               logger.Logger
}

func NewEventListener(bidService *BidService, connectionManager domain.ConnectionManager,
	broadcaster domain.AuctionBroadcaster, log logger.Logger) *EventListener {
	return &EventListener{
		bidService:        bidService,
		broadcaster:       broadcaster,
		connectionManager: connectionManager,
		log:               log,
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	el.log.Info("Starting event listener")
	return subscriber.SubscribeToBidEvents(ctx, el.handleBidEvent)
}

func (el *EventListener) handleBidEvent(event *domain.BidEvent) error {
	el.log.Debug("Handling bid event", "type", event.Type, "auction_id", event.AuctionID)

	switch event.Type {
	case domain.BidAccepted:
		return el.handleBidAccepted(event)
	case domain.BidRejected:
		return nil
	case domain.AuctionClosed:
		return el.handleAuctionClosed(event)
	case domain.AuctionExtension:
		return el.handleAuctionExtended(event)
	}

	return fmt.Errorf("unknown event type %q", event.Type)
}

func (el *EventListener) handleBidAccepted(event *domain.BidEvent) error {
	el.bidService.UpdateLocalCache(event.AuctionID, event.Amount, event.UserID)

	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":           "bid_update",
		"current_price":  event.Amount,
		"current_bidder": event.UserID,
		"timestamp":      event.Timestamp,
	})
}

func (el *EventListener) handleAuctionClosed(event *domain.BidEvent) error {
	el.bidService.RemoveFromCache(event.AuctionID)

	if err := el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":        "auction_closed",
		"winner_id":   event.UserID,
		"final_price": event.Amount,
		"timestamp":   event.Timestamp,
	}); err != nil {
		el.log.Error("Failed to broadcast auction close", "error", err)
		return err
	}

	return el.connectionManager.CloseAndUnregisterConnections(event.AuctionID)
}

func (el *EventListener) handleAuctionExtended(event *domain.BidEvent) error {
	return el.broadcaster.BroadcastToAuction(context.Background(), event.AuctionID, map[string]interface{}{
		"type":      "auction_extended",
		"timestamp": event.Timestamp,
	})
}
