package handlers

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/middleware"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BidHandler struct {
	bidService *services.BidService
	log        logger.Logger
}

func NewBidHandler(bidService *services.BidService, log logger.Logger) *BidHandler {
	return &BidHandler{
		bidService: bidService,
		log:        log,
	}
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount"`
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	bid, err := h.bidService.PlaceBid(c.Request().Context(), c.Param("id"), middleware.UserID(c), req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toBidResponse(bid))
}

func (h *BidHandler) BuyNow(c echo.Context) error {
	bid, err := h.bidService.BuyNow(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toBidResponse(bid))
}

func (h *BidHandler) ListBids(c echo.Context) error {
	bids, err := h.bidService.GetBidsForAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]*BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, toBidResponse(b))
	}
	return respondOK(c, out)
}
