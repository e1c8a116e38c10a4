package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"
)

// PaymentOrchestrator owns every call to the external processor and the
// BidPayment audit trail that mirrors it.
type PaymentOrchestrator struct {
	payments   domain.PaymentRepository
	users      domain.UserRepository
	provider   domain.PaymentProvider
	commission *CommissionCalculator
	holdAmount float64
	log        logger.Logger
}

func NewPaymentOrchestrator(
	payments domain.PaymentRepository,
	users domain.UserRepository,
	provider domain.PaymentProvider,
	commission *CommissionCalculator,
	holdAmount float64,
	log logger.Logger,
) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		payments:   payments,
		users:      users,
		provider:   provider,
		commission: commission,
		holdAmount: holdAmount,
		log:        log,
	}
}

// AuthorizeBid places a manual-capture hold for the configured ceiling
// against the bidder's stored method. A bidder holds at most one open
// authorization per auction; later bids reuse it.
func (o *PaymentOrchestrator) AuthorizeBid(ctx context.Context, auction *domain.Auction, bidder *domain.User, bidAmount float64) (*domain.BidPayment, error) {
	existing, err := o.payments.GetAuthorization(ctx, auction.ID, bidder.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	if !bidder.PaymentVerified || bidder.PaymentMethodID == "" {
		return nil, domain.ErrPaymentMethodRequired
	}

	now := time.Now()
	payment := &domain.BidPayment{
		ID:              utils.GenerateID("pay"),
		AuctionID:       auction.ID,
		UserID:          bidder.ID,
		BidAmount:       bidAmount,
		TotalAmount:     o.holdAmount,
		PaymentMethodID: bidder.PaymentMethodID,
		Status:          domain.PaymentCreated,
		Type:            domain.PaymentBidAuthorization,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := o.payments.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	intent, err := o.provider.CreateAuthorization(ctx, bidder.ProviderCustomerID, bidder.PaymentMethodID,
		o.holdAmount, map[string]string{
			"auction_id": auction.ID,
			"user_id":    bidder.ID,
		})
	if err != nil {
		if updateErr := o.payments.UpdatePayment(ctx, payment.ID, domain.PaymentProcessingFailed, ""); updateErr != nil {
			o.log.Error("Failed to mark authorization failed", "payment_id", payment.ID, "error", updateErr)
		}
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	payment.ProviderIntentID = intent.ID
	payment.Status = domain.PaymentRequiresCapture
	if err := o.payments.UpdatePayment(ctx, payment.ID, domain.PaymentRequiresCapture, intent.ID); err != nil {
		return nil, err
	}

	o.log.Info("Bid authorization placed",
		"auction_id", auction.ID, "user_id", bidder.ID, "intent_id", intent.ID)
	return payment, nil
}

// ChargeWinner collects the commission once an auction resolves sold. The
// winner's open hold is captured when it covers the commission; otherwise a
// fresh charge is created and the hold is left for manual reconciliation.
func (o *PaymentOrchestrator) ChargeWinner(ctx context.Context, auction *domain.Auction) (*domain.BidPayment, error) {
	if auction.WinnerID == "" {
		return nil, fmt.Errorf("%w: auction %s has no winner", domain.ErrInvalidInput, auction.ID)
	}

	winner, err := o.users.GetUserByID(ctx, auction.WinnerID)
	if err != nil {
		return nil, err
	}

	commissionAmount, err := o.commission.Calculate(ctx, auction.Category, auction.FinalPrice)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &domain.BidPayment{
		ID:               utils.GenerateID("pay"),
		AuctionID:        auction.ID,
		UserID:           winner.ID,
		BidAmount:        auction.FinalPrice,
		CommissionAmount: commissionAmount,
		TotalAmount:      commissionAmount,
		PaymentMethodID:  winner.PaymentMethodID,
		Status:           domain.PaymentCreated,
		Type:             domain.PaymentFinalCommission,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := o.payments.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	intent, chargeErr := o.collectCommission(ctx, auction, winner, commissionAmount)
	if chargeErr != nil {
		if updateErr := o.payments.UpdatePayment(ctx, payment.ID, domain.PaymentProcessingFailed, ""); updateErr != nil {
			o.log.Error("Failed to mark commission charge failed", "payment_id", payment.ID, "error", updateErr)
		}
		return nil, fmt.Errorf("commission charge failed: %w", chargeErr)
	}

	payment.ProviderIntentID = intent.ID
	payment.Status = domain.PaymentSucceeded
	if err := o.payments.UpdatePayment(ctx, payment.ID, domain.PaymentSucceeded, intent.ID); err != nil {
		return nil, err
	}

	o.log.Info("Winner charged", "auction_id", auction.ID,
		"winner_id", winner.ID, "commission", commissionAmount)
	return payment, nil
}

func (o *PaymentOrchestrator) collectCommission(ctx context.Context, auction *domain.Auction, winner *domain.User, commissionAmount float64) (*domain.ProviderIntent, error) {
	authorization, err := o.payments.GetAuthorization(ctx, auction.ID, winner.ID)
	if err == nil && authorization.TotalAmount >= commissionAmount {
		intent, captureErr := o.provider.CaptureAuthorization(ctx, authorization.ProviderIntentID, commissionAmount)
		if captureErr != nil {
			// The hold keeps its prior state for admin reconciliation.
			return nil, captureErr
		}
		if updateErr := o.payments.UpdatePayment(ctx, authorization.ID, domain.PaymentSucceeded, authorization.ProviderIntentID); updateErr != nil {
			o.log.Error("Failed to mark authorization captured",
				"payment_id", authorization.ID, "error", updateErr)
		}
		return intent, nil
	}
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	return o.provider.CreateCharge(ctx, winner.ProviderCustomerID, winner.PaymentMethodID,
		commissionAmount, map[string]string{
			"auction_id": auction.ID,
			"user_id":    winner.ID,
		})
}

// ReplacePaymentMethod verifies and attaches the new method, cancels every
// open hold at the provider (best-effort, failures logged), then flips the
// audit records in one transaction. Returns how many holds were canceled.
func (o *PaymentOrchestrator) ReplacePaymentMethod(ctx context.Context, userID, newPaymentMethodID string) (int, error) {
	if newPaymentMethodID == "" {
		return 0, fmt.Errorf("%w: payment method id required", domain.ErrInvalidInput)
	}

	user, err := o.users.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	customerID := user.ProviderCustomerID
	if customerID == "" {
		customerID, err = o.provider.CreateCustomer(ctx, user.Email)
		if err != nil {
			return 0, fmt.Errorf("customer creation failed: %w", err)
		}
	}

	if err := o.provider.AttachPaymentMethod(ctx, customerID, newPaymentMethodID); err != nil {
		return 0, fmt.Errorf("payment method verification failed: %w", err)
	}

	pending, err := o.payments.GetPaymentsByUserAndStatus(ctx, userID, domain.PaymentRequiresCapture)
	if err != nil {
		return 0, err
	}

	for _, hold := range pending {
		if err := o.provider.CancelAuthorization(ctx, hold.ProviderIntentID); err != nil {
			// Best-effort cleanup: keep cancelling the rest.
			o.log.Error("Failed to cancel authorization at provider",
				"payment_id", hold.ID, "intent_id", hold.ProviderIntentID, "error", err)
		}
	}

	canceled, replaced, err := o.payments.RetireAuthorizations(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := o.users.UpdatePaymentMethod(ctx, userID, customerID, newPaymentMethodID, true); err != nil {
		return 0, err
	}

	o.log.Info("Payment method replaced", "user_id", userID,
		"canceled", canceled, "replaced", replaced)
	return canceled, nil
}
