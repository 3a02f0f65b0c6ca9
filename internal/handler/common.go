// Package handler contains the thin HTTP layer: handlers bind JSON
// bodies, call the access engine and repository, and map core errors
// onto HTTP statuses. No business rule lives here that is not a
// request-shape concern.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/logging"
	"github.com/iliyamo/client-portal/internal/repository"
)

// FieldErrors lists per-field validation violations.
type FieldErrors map[string]string

// reqCtx bounds every store call made on behalf of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// badRequest responds with the structured validation payload.
func badRequest(c echo.Context, fields FieldErrors) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "fields": fields})
}

// mapError translates core errors onto the HTTP taxonomy. Forbidden
// and NotFound are deliberately distinct; anything unexpected is
// logged with detail and surfaced generically.
func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, access.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}
	logging.Logger.WithError(err).
		WithField("path", c.Path()).
		Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// Health reports liveness.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
