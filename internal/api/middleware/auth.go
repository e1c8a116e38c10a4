package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

func parseToken(secret []byte, tokenStr string) (sub, role string, err error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}

	sub, _ = claims["sub"].(string)
	role, _ = claims["role"].(string)
	if sub == "" {
		return "", "", errors.New("token missing subject")
	}
	return sub, role, nil
}

// JWT validates the bearer token and injects the user id and role into the
// echo context.
func JWT(secret string) echo.MiddlewareFunc {
	secretBytes := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "bearer token required")
			}

			sub, role, err := parseToken(secretBytes, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(ContextUserID, sub)
			c.Set(ContextRole, role)

			return next(c)
		}
	}
}

// JWTFromQuery validates a token carried in the token query parameter, for
// websocket upgrades where browsers cannot set the Authorization header.
func JWTFromQuery(secret string) echo.MiddlewareFunc {
	secretBytes := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := c.QueryParam("token")
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token required")
			}

			sub, role, err := parseToken(secretBytes, tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(ContextUserID, sub)
			c.Set(ContextRole, role)

			return next(c)
		}
	}
}

// RequireAdmin must run after JWT.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(ContextRole).(string); role != string(domain.RoleAdmin) {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

// UserID reads the authenticated user from the context.
func UserID(c echo.Context) string {
	userID, _ := c.Get(ContextUserID).(string)
	return userID
}
