package domain

import (
	"context"
	"time"
)

// Repository interfaces
type AuctionRepository interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	ListAuctions(ctx context.Context, status *AuctionStatus, category string) ([]*Auction, error)
	UpdateAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	// RecordBid bumps current price, bidder and bid count only when the new
	// amount still beats the stored price. Returns false when another bid won.
	RecordBid(ctx context.Context, auctionID, bidderID string, amount float64) (bool, error)
	// SetWinner flips an active auction to a terminal status and records the
	// winner in one conditional write. Returns false when the row was no
	// longer active, so racing finalizations cannot both settle.
	SetWinner(ctx context.Context, auctionID string, status AuctionStatus, winnerID string, finalPrice float64) (bool, error)
	UpdateEndTime(ctx context.Context, auctionID string, endTime time.Time) error
	AdjustWatchCount(ctx context.Context, auctionID string, delta int) error
}

type BidRepository interface {
	SaveBid(ctx context.Context, bid *Bid) error
	GetBidsForAuction(ctx context.Context, auctionID string) ([]*Bid, error)
}

type OfferRepository interface {
	CreateOffer(ctx context.Context, offer *Offer) error
	GetOffer(ctx context.Context, offerID string) (*Offer, error)
	GetOffersForAuction(ctx context.Context, auctionID string) ([]*Offer, error)
	UpdateOfferStatus(ctx context.Context, offerID string, status OfferStatus) error
	RejectPendingOffers(ctx context.Context, auctionID, exceptOfferID string) error
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *BidPayment) error
	UpdatePayment(ctx context.Context, paymentID string, status PaymentStatus, providerIntentID string) error
	GetPaymentsByUserAndStatus(ctx context.Context, userID string, status PaymentStatus) ([]*BidPayment, error)
	GetAuthorization(ctx context.Context, auctionID, userID string) (*BidPayment, error)
	// RetireAuthorizations atomically marks the user's pending authorizations
	// canceled and the already-captured ones replaced, in one transaction.
	RetireAuthorizations(ctx context.Context, userID string) (canceled int, replaced int, err error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePaymentMethod(ctx context.Context, userID, customerID, paymentMethodID string, verified bool) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	GetCommission(ctx context.Context, category string) (*Commission, error)
	UpsertCommission(ctx context.Context, commission *Commission) error
}

type WatchlistRepository interface {
	// AddEntry reports false when the user already watches the auction.
	AddEntry(ctx context.Context, entry *WatchlistEntry) (bool, error)
	RemoveEntry(ctx context.Context, auctionID, userID string) (bool, error)
	SaveComment(ctx context.Context, comment *Comment) error
	GetCommentsForAuction(ctx context.Context, auctionID string) ([]*Comment, error)
}

type StatsRepository interface {
	MarketplaceStats(ctx context.Context) (*MarketplaceStats, error)
	CategoryBreakdown(ctx context.Context) ([]*CategoryStats, error)
	UserStats(ctx context.Context, userID string) (*UserStats, error)
}

type SchedulerRepository interface {
	CreateJob(ctx context.Context, job *ScheduledJob) error
	GetPendingJobs(ctx context.Context, before time.Time) ([]*ScheduledJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	CancelJobsForAuction(ctx context.Context, auctionID string) error
}

// Cache interfaces
type BidCache interface {
	InitializeBidding(ctx context.Context, auctionID string, startingBid, increment float64) error
	// AtomicBidUpdate applies the bid only if it clears the stored price plus
	// increment; concurrent bids on one auction serialize through this call.
	AtomicBidUpdate(ctx context.Context, auctionID, userID string, amount float64) (bool, error)
	GetCurrentBid(ctx context.Context, auctionID string) (*LocalAuctionCache, error)
}

type AuctionStateCache interface {
	SetAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	GetAuctionStatus(ctx context.Context, auctionID string) (AuctionStatus, error)
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

type EventHandler func(event *BidEvent) error

type EventSubscriber interface {
	SubscribeToBidEvents(ctx context.Context, handler EventHandler) error
}

// PaymentProvider is the injected boundary to the external processor so
// tests can substitute it.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	CreateAuthorization(ctx context.Context, customerID, paymentMethodID string, amount float64, metadata map[string]string) (*ProviderIntent, error)
	CaptureAuthorization(ctx context.Context, intentID string, amount float64) (*ProviderIntent, error)
	CancelAuthorization(ctx context.Context, intentID string) error
	CreateCharge(ctx context.Context, customerID, paymentMethodID string, amount float64, metadata map[string]string) (*ProviderIntent, error)
}

// Notification interfaces
type UserNotifier interface {
	NotifyUser(ctx context.Context, userID string, message interface{}) error
}

type AuctionBroadcaster interface {
	BroadcastToAuction(ctx context.Context, auctionID string, message interface{}) error
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Scheduler interface
type AuctionScheduler interface {
	ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error
	RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error
	CancelSchedule(ctx context.Context, auctionID string) error
	Start(ctx context.Context) error
	Stop() error
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	UnregisterConnection(userID, auctionID string) error
	BroadcastToAuction(auctionID string, message interface{}) error
	NotifyUser(userID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}
