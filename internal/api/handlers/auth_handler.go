package handlers

import (
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/services"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	userService *services.UserService
	log         logger.Logger
}

func NewAuthHandler(userService *services.UserService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		log:         log,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	user, err := h.userService.Register(c.Request().Context(), req.Email, req.Password, req.Name, domain.UserRole(req.Role))
	if err != nil {
		return respondError(c, err)
	}

	return respondCreated(c, toUserResponse(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}

	token, user, err := h.userService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}
