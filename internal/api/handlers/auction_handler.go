package handlers

import (
	"net/http"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/middleware"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuctionHandler struct {
	auctionManager *services.AuctionManager
	auctionRepo    domain.AuctionRepository
	log            logger.Logger
}

func NewAuctionHandler(auctionManager *services.AuctionManager, auctionRepo domain.AuctionRepository, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctionManager: auctionManager,
		auctionRepo:    auctionRepo,
		log:            log,
	}
}

type CreateAuctionRequest struct {
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartPrice   float64   `json:"start_price"`
	ReservePrice float64   `json:"reserve_price"`
	BuyNowPrice  float64   `json:"buy_now_price"`
	EndTime      time.Time `json:"end_time"`
}

func (h *AuctionHandler) CreateAuction(c echo.Context) error {
	role, _ := c.Get(middleware.ContextRole).(string)
	if role != string(domain.RoleSeller) && role != string(domain.RoleAdmin) {
		return respondFail(c, http.StatusForbidden, "seller role required")
	}

	var req CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	auction, err := h.auctionManager.CreateAuction(c.Request().Context(), services.CreateAuctionInput{
		SellerID:     middleware.UserID(c),
		Category:     req.Category,
		Title:        req.Title,
		Description:  req.Description,
		StartPrice:   req.StartPrice,
		ReservePrice: req.ReservePrice,
		BuyNowPrice:  req.BuyNowPrice,
		EndTime:      req.EndTime,
	})
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toAuctionResponse(auction))
}

func (h *AuctionHandler) GetAuction(c echo.Context) error {
	auction, err := h.auctionRepo.GetAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, toAuctionResponse(auction))
}

// ListAuctions filters by the optional status and category query params.
func (h *AuctionHandler) ListAuctions(c echo.Context) error {
	var statusFilter *domain.AuctionStatus
	if raw := c.QueryParam("status"); raw != "" {
		status, ok := domain.ParseAuctionStatus(raw)
		if !ok {
			return respondFail(c, http.StatusBadRequest, "unknown status: "+raw)
		}
		statusFilter = &status
	}

	auctions, err := h.auctionRepo.ListAuctions(c.Request().Context(), statusFilter, c.QueryParam("category"))
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, toAuctionResponses(auctions))
}

// ApproveAuction moves a draft onto the live floor. Admin only.
func (h *AuctionHandler) ApproveAuction(c echo.Context) error {
	if err := h.auctionManager.ApproveAuction(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"auction_id": c.Param("id"), "status": domain.AuctionActive.String()})
}

// CloseAuction forces the natural close resolution early. Admin only.
func (h *AuctionHandler) CloseAuction(c echo.Context) error {
	if err := h.auctionManager.CloseAuction(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"auction_id": c.Param("id")})
}

// CancelAuction pulls a listing. The seller may cancel their own; admins any.
func (h *AuctionHandler) CancelAuction(c echo.Context) error {
	auctionID := c.Param("id")

	auction, err := h.auctionRepo.GetAuction(c.Request().Context(), auctionID)
	if err != nil {
		return respondError(c, err)
	}

	role, _ := c.Get(middleware.ContextRole).(string)
	if role != string(domain.RoleAdmin) && auction.SellerID != middleware.UserID(c) {
		return respondError(c, domain.ErrForbidden)
	}

	if err := h.auctionManager.CancelAuction(c.Request().Context(), auctionID); err != nil {
		return respondError(c, err)
	}

	return respondOK(c, map[string]string{"auction_id": auctionID, "status": domain.AuctionCancelled.String()})
}
