// Package handler implements the HTTP layer on top of Echo.  Handlers
// bind and sanity-check request shapes, delegate to the booking
// service or repositories, and translate the error taxonomy into
// status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
)

// getUserID extracts the user_id claim from the context and converts
// it to uint64.  The JWT middleware stores claims as decoded JSON, so
// numbers usually arrive as float64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the context's role claim is ADMIN.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// respondError maps the service and repository error taxonomy onto
// HTTP statuses.  Validation failures include the offending field
// names so clients can re-prompt precisely; anything unrecognised is
// reported as a generic database error.
func respondError(c echo.Context, err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input", "fields": verr.Fields})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrNoTransaction):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no transaction for reservation"})
	case errors.Is(err, repository.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrSlotConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot not available"})
	case errors.Is(err, repository.ErrBayUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "parking bay unavailable"})
	case errors.Is(err, repository.ErrAlreadyRefunded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already refunded"})
	case errors.Is(err, repository.ErrInsufficientPoints):
		return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient loyalty points"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict with current state"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
