package domain

import "time"

type BidEvent struct {
	Type      BidEventType `json:"type"`
	AuctionID string       `json:"auction_id"`
	UserID    string       `json:"user_id"`
	Amount    float64      `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
}

type BidEventType string

const (
	BidAccepted      BidEventType = "bid_accepted"
	BidRejected      BidEventType = "bid_rejected"
	AuctionClosed    BidEventType = "auction_closed"
	AuctionExtension BidEventType = "auction_extended"
)
