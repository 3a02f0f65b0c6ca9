// Package middleware provides shared request processing for handlers.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/auth"
	"github.com/iliyamo/client-portal/internal/model"
)

// userKey is the echo context key the authenticated user is stored
// under.
const userKey = "user"

// SessionAuth returns middleware that resolves the bearer session
// token into a full user record and stores it in the context. Any
// resolution failure yields the same generic 401; "no session",
// "expired" and "revoked" are indistinguishable to the caller.
func SessionAuth(sessions *auth.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			u, err := sessions.Resolve(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidSession) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set(userKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by SessionAuth,
// or nil on unauthenticated routes.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// SessionToken extracts the raw bearer token, for logout.
func SessionToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
