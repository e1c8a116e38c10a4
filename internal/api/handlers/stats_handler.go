package handlers

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type StatsHandler struct {
	statsService *services.StatsService
	log          logger.Logger
}

func NewStatsHandler(statsService *services.StatsService, log logger.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		log:          log,
	}
}

func (h *StatsHandler) MarketplaceReport(c echo.Context) error {
	report, err := h.statsService.MarketplaceReport(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, report)
}
