package handlers

import (
	"errors"
	"net/http"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/labstack/echo/v4"
)

// Envelope is the response shape every endpoint returns.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func respondCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func respondFail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// respondError maps a service error onto the HTTP taxonomy: 400 validation,
// 401/403 auth, 404 not-found, 409 state conflicts, 500 everything else.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrPaymentMethodRequired),
		errors.Is(err, domain.ErrBuyNowUnavailable),
		errors.Is(err, domain.ErrOwnAuction),
		errors.Is(err, domain.ErrEmailTaken):
		return respondFail(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials):
		return respondFail(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, domain.ErrForbidden):
		return respondFail(c, http.StatusForbidden, err.Error())

	case errors.Is(err, domain.ErrAuctionNotFound),
		errors.Is(err, domain.ErrOfferNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		return respondFail(c, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrOfferNotPending),
		errors.Is(err, domain.ErrInvalidTransition):
		return respondFail(c, http.StatusConflict, err.Error())

	default:
		return respondFail(c, http.StatusInternalServerError, "internal server error")
	}
}
