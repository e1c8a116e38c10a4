package handlers

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/api/middleware"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type WatchlistHandler struct {
	watchlistService *services.WatchlistService
	log              logger.Logger
}

func NewWatchlistHandler(watchlistService *services.WatchlistService, log logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		log:              log,
	}
}

type AddCommentRequest struct {
	Body string `json:"body"`
}

func (h *WatchlistHandler) Watch(c echo.Context) error {
	if err := h.watchlistService.Watch(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"auction_id": c.Param("id")})
}

func (h *WatchlistHandler) Unwatch(c echo.Context) error {
	if err := h.watchlistService.Unwatch(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"auction_id": c.Param("id")})
}

func (h *WatchlistHandler) AddComment(c echo.Context) error {
	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	comment, err := h.watchlistService.AddComment(c.Request().Context(), c.Param("id"), middleware.UserID(c), req.Body)
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toCommentResponse(comment))
}

func (h *WatchlistHandler) ListComments(c echo.Context) error {
	comments, err := h.watchlistService.GetComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]*CommentResponse, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResponse(cm))
	}
	return respondOK(c, out)
}
