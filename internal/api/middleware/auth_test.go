package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func invoke(middlewares []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return rec, handler(c)
}

func TestJWT(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWT(testSecret)}

	t.Run("valid_token_injects_identity", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user-1",
			"role": "seller",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		rec, err := invoke(mw, "Bearer "+token)
		require.NoError(t, err)
		require.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("missing_header", func(t *testing.T) {
		_, err := invoke(mw, "")
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("expired_token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := invoke(mw, "Bearer "+token)
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := invoke(mw, "Bearer "+token)
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("missing_subject", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := invoke(mw, "Bearer "+token)
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestJWTFromQuery(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWTFromQuery(testSecret)}

	invokeWithQuery := func(query string) (*httptest.ResponseRecorder, error) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := func(c echo.Context) error {
			return c.String(http.StatusOK, UserID(c))
		}
		for i := len(mw) - 1; i >= 0; i-- {
			handler = mw[i](handler)
		}
		return rec, handler(c)
	}

	t.Run("valid_token_injects_identity", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user-1",
			"role": "bidder",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		rec, err := invokeWithQuery("?token=" + token)
		require.NoError(t, err)
		require.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("missing_token", func(t *testing.T) {
		_, err := invokeWithQuery("")
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	// A bare user id in the query must not pass as an identity.
	t.Run("unsigned_identity_rejected", func(t *testing.T) {
		_, err := invokeWithQuery("?token=user-1")
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := invokeWithQuery("?token=" + token)
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWT(testSecret), RequireAdmin()}

	t.Run("admin_passes", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "admin-1",
			"role": "admin",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		rec, err := invoke(mw, "Bearer "+token)
		require.NoError(t, err)
		require.Equal(t, "admin-1", rec.Body.String())
	})

	t.Run("bidder_forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user-1",
			"role": "bidder",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		_, err := invoke(mw, "Bearer "+token)
		httpErr := &echo.HTTPError{}
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusForbidden, httpErr.Code)
	})
}
