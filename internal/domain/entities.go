package domain

import (
	"time"
)

// Auction is a vehicle listing accepting bids and offers until it resolves.
type Auction struct {
	ID              string
	SellerID        string
	Category        string
	Title           string
	Description     string
	StartPrice      float64
	ReservePrice    float64 // 0 = no reserve
	BuyNowPrice     float64 // 0 = buy-now disabled
	CurrentPrice    float64
	CurrentBidderID string
	WinnerID        string
	FinalPrice      float64
	BidCount        int
	WatchCount      int
	Status          AuctionStatus
	EndTime         time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AuctionStatus int

const (
	AuctionDraft AuctionStatus = iota
	AuctionActive
	AuctionEnded
	AuctionSold
	AuctionSoldBuyNow
	AuctionReserveNotMet
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionDraft:
		return "draft"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionSold:
		return "sold"
	case AuctionSoldBuyNow:
		return "sold_buy_now"
	case AuctionReserveNotMet:
		return "reserve_not_met"
	case AuctionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseAuctionStatus is the inverse of String.
func ParseAuctionStatus(s string) (AuctionStatus, bool) {
	for status := AuctionDraft; status <= AuctionCancelled; status++ {
		if status.String() == s {
			return status, true
		}
	}
	return 0, false
}

// Bid is one accepted bid on an auction.
type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    float64
	BuyNow    bool
	CreatedAt time.Time
}

// Offer is a direct purchase proposal outside the bidding ladder.
type Offer struct {
	ID        string
	AuctionID string
	BuyerID   string
	Amount    float64
	Status    OfferStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferWithdrawn OfferStatus = "withdrawn"
)

type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	Name               string
	Role               UserRole
	PaymentVerified    bool
	ProviderCustomerID string
	PaymentMethodID    string
	CreatedAt          time.Time
}

type UserRole string

const (
	RoleBidder UserRole = "bidder"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Commission is the per-category fee policy, one row per category.
// CapAmount of zero means the percentage is uncapped.
type Commission struct {
	Category  string
	Rate      float64
	CapAmount float64
	UpdatedAt time.Time
}

type WatchlistEntry struct {
	ID        string
	AuctionID string
	UserID    string
	CreatedAt time.Time
}

type Comment struct {
	ID        string
	AuctionID string
	UserID    string
	Body      string
	CreatedAt time.Time
}

// LocalAuctionCache is the in-process snapshot of the live bidding state
// kept alongside the authoritative Redis hash.
type LocalAuctionCache struct {
	AuctionID   string
	CurrentBid  float64
	BidderID    string
	Increment   float64
	LastUpdated time.Time
}

type ScheduledJob struct {
	ID        string
	AuctionID string
	JobType   JobType
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}

type JobType string

const (
	JobEndAuction JobType = "end_auction"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobExecuted  JobStatus = "executed"
	JobCancelled JobStatus = "cancelled"
)
