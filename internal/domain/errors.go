package domain

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPaymentNotFound  = errors.New("payment record not found")
)

// Business rule errors
var (
	ErrAuctionNotActive      = errors.New("auction is not active")
	ErrBidTooLow             = errors.New("bid below minimum increment")
	ErrPaymentMethodRequired = errors.New("verified payment method required")
	ErrBuyNowUnavailable     = errors.New("buy-now not available for this auction")
	ErrOfferNotPending       = errors.New("offer is no longer pending")
	ErrOwnAuction            = errors.New("sellers cannot bid on their own auction")
	ErrInvalidTransition     = errors.New("invalid auction status transition")
	ErrInvalidInput          = errors.New("invalid input")
)

// Auth errors
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("operation not permitted for this user")
)
