package handlers

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/middleware"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService  *services.UserService
	orchestrator *services.PaymentOrchestrator
	statsService *services.StatsService
	log          logger.Logger
}

func NewUserHandler(
	userService *services.UserService,
	orchestrator *services.PaymentOrchestrator,
	statsService *services.StatsService,
	log logger.Logger,
) *UserHandler {
	return &UserHandler{
		userService:  userService,
		orchestrator: orchestrator,
		statsService: statsService,
		log:          log,
	}
}

type ReplacePaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

type ReplacePaymentMethodResponse struct {
	CanceledAuthorizations int `json:"canceled_authorizations"`
}

func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, toUserResponse(user))
}

// ReplacePaymentMethod swaps the caller's card: the new method is verified
// with the provider before any open holds are retired.
func (h *UserHandler) ReplacePaymentMethod(c echo.Context) error {
	var req ReplacePaymentMethodRequest
	if err := c.Bind(&req); err != nil || req.PaymentMethodID == "" {
		return respondError(c, domain.ErrInvalidInput)
	}

	canceled, err := h.orchestrator.ReplacePaymentMethod(c.Request().Context(), middleware.UserID(c), req.PaymentMethodID)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, ReplacePaymentMethodResponse{CanceledAuthorizations: canceled})
}

func (h *UserHandler) MyStats(c echo.Context) error {
	stats, err := h.statsService.UserStats(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, stats)
}
