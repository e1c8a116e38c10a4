package handlers

import (
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type CategoryHandler struct {
	catalog *services.CatalogService
	log     logger.Logger
}

func NewCategoryHandler(catalog *services.CatalogService, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		log:     log,
	}
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SetCommissionRequest struct {
	Rate      float64 `json:"rate"`
	CapAmount float64 `json:"cap_amount"`
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CommissionResponse struct {
	Category  string  `json:"category"`
	Rate      float64 `json:"rate"`
	CapAmount float64 `json:"cap_amount,omitempty"`
}

func toCategoryResponse(cat *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		CreatedAt:   cat.CreatedAt,
	}
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	out := make([]*CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, toCategoryResponse(cat))
	}
	return respondOK(c, out)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	category, err := h.catalog.CreateCategory(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toCategoryResponse(category))
}

func (h *CategoryHandler) SetCommission(c echo.Context) error {
	var req SetCommissionRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	commission, err := h.catalog.SetCommission(c.Request().Context(), c.Param("category"), req.Rate, req.CapAmount)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, CommissionResponse{
		Category:  commission.Category,
		Rate:      commission.Rate,
		CapAmount: commission.CapAmount,
	})
}
