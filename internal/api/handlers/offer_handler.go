package handlers

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/middleware"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type OfferHandler struct {
	offerService *services.OfferService
	log          logger.Logger
}

func NewOfferHandler(offerService *services.OfferService, log logger.Logger) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		log:          log,
	}
}

type MakeOfferRequest struct {
	Amount float64 `json:"amount"`
}

type RespondToOfferRequest struct {
	Accept bool `json:"accept"`
}

func (h *OfferHandler) MakeOffer(c echo.Context) error {
	var req MakeOfferRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	offer, err := h.offerService.MakeOffer(c.Request().Context(), c.Param("id"), middleware.UserID(c), req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toOfferResponse(offer))
}

func (h *OfferHandler) RespondToOffer(c echo.Context) error {
	var req RespondToOfferRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	offer, err := h.offerService.RespondToOffer(c.Request().Context(), c.Param("offerId"), middleware.UserID(c), req.Accept)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, toOfferResponse(offer))
}

func (h *OfferHandler) WithdrawOffer(c echo.Context) error {
	if err := h.offerService.WithdrawOffer(c.Request().Context(), c.Param("offerId"), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"offer_id": c.Param("offerId"), "status": string(domain.OfferWithdrawn)})
}

func (h *OfferHandler) ListOffers(c echo.Context) error {
	offers, err := h.offerService.GetOffersForAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]*OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, toOfferResponse(o))
	}
	return respondOK(c, out)
}
