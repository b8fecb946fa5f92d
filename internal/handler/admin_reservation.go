package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/booking"
)

// AdminReservationHandler covers the admin interventions on bookings:
// refunds, cancellations and manual loyalty adjustments.  Every
// intervention is audited by the service inside the same transaction.
type AdminReservationHandler struct {
	Svc *booking.Service
}

func NewAdminReservationHandler(svc *booking.Service) *AdminReservationHandler {
	if svc == nil {
		panic("nil service passed to NewAdminReservationHandler")
	}
	return &AdminReservationHandler{Svc: svc}
}

// Refund handles POST /v1/admin/reservations/:id/refund.
func (h *AdminReservationHandler) Refund(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	refund, err := h.Svc.RefundReservation(c.Request().Context(), id, adminID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": id,
		"refund": echo.Map{
			"id":           refund.ID,
			"amount_cents": refund.AmountCents,
			"status":       refund.Status,
		},
	})
}

// Cancel handles POST /v1/admin/reservations/:id/cancel.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Svc.CancelReservation(c.Request().Context(), id, adminID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": id, "status": "cancelled"})
}

// SetStatus handles PATCH /v1/admin/reservations/:id/status.  It is
// the raw escape hatch for corrections outside the usual transitions;
// refunds and cancellations have their own audited endpoints.
func (h *AdminReservationHandler) SetStatus(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Svc.UpdateReservationStatus(c.Request().Context(), id, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": id, "status": req.Status})
}

// Loyalty handles POST /v1/admin/users/:id/loyalty with a signed
// delta.  Decrements past zero are rejected.
func (h *AdminReservationHandler) Loyalty(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req struct {
		Delta int64 `json:"delta"`
	}
	if err := c.Bind(&req); err != nil || req.Delta == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "non-zero delta required"})
	}
	if err := h.Svc.UpdateLoyaltyPoints(c.Request().Context(), userID, req.Delta); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "delta": req.Delta})
}
