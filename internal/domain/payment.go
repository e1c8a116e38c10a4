package domain

import "time"

// BidPayment is the audit record for every interaction with the payment
// provider. Records are never deleted, only status-transitioned.
type BidPayment struct {
	ID               string
	AuctionID        string
	UserID           string
	BidAmount        float64
	CommissionAmount float64
	TotalAmount      float64
	ProviderIntentID string
	PaymentMethodID  string
	Status           PaymentStatus
	Type             PaymentType
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type PaymentStatus string

const (
	PaymentCreated          PaymentStatus = "created"
	PaymentRequiresCapture  PaymentStatus = "requires_capture"
	PaymentSucceeded        PaymentStatus = "succeeded"
	PaymentCanceled         PaymentStatus = "canceled"
	PaymentProcessingFailed PaymentStatus = "processing_failed"
	PaymentReplaced         PaymentStatus = "replaced"
)

type PaymentType string

const (
	PaymentBidAuthorization PaymentType = "bid_authorization"
	PaymentFinalCommission  PaymentType = "final_commission"
	PaymentBidDeposit       PaymentType = "bid_deposit"
)

// ProviderIntent is the provider-side view of an authorization or charge.
type ProviderIntent struct {
	ID     string
	Status string
	Amount float64
}

const (
	IntentRequiresCapture = "requires_capture"
	IntentSucceeded       = "succeeded"
	IntentCanceled        = "canceled"
)
