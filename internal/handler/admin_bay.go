package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
)

// AdminBayHandler covers the bay management surface reserved for
// admins: create, update, delete and the manual availability switch.
type AdminBayHandler struct {
	Store *repository.Store
}

func NewAdminBayHandler(store *repository.Store) *AdminBayHandler {
	if store == nil {
		panic("nil store passed to NewAdminBayHandler")
	}
	return &AdminBayHandler{Store: store}
}

type bayReq struct {
	Title      string  `json:"title"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	PriceCents int64   `json:"price_cents"`
	Available  *bool   `json:"available"`
}

// Create handles POST /v1/admin/bays.
func (h *AdminBayHandler) Create(c echo.Context) error {
	var req bayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b := &model.ParkingBay{
		Title:      strings.TrimSpace(req.Title),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		PriceCents: req.PriceCents,
		Available:  true,
	}
	if req.Available != nil {
		b.Available = *req.Available
	}
	if err := model.ValidateBay(b); err != nil {
		return respondError(c, err)
	}
	if err := h.Store.CreateBay(c.Request().Context(), b); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, bayRespOf(b))
}

// Update handles PUT /v1/admin/bays/:id.
func (h *AdminBayHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	var req bayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	b, err := h.Store.BayByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	b.Title = strings.TrimSpace(req.Title)
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude
	b.PriceCents = req.PriceCents
	if req.Available != nil {
		b.Available = *req.Available
	}
	if err := model.ValidateBay(b); err != nil {
		return respondError(c, err)
	}
	if err := h.Store.UpdateBay(ctx, b); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bayRespOf(b))
}

// Delete handles DELETE /v1/admin/bays/:id.
func (h *AdminBayHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	if err := h.Store.DeleteBay(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetAvailability handles PATCH /v1/admin/bays/:id/availability.  It
// flips the manual override that blocks new bookings; existing
// reservations are untouched.
func (h *AdminBayHandler) SetAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil || req.Available == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available is required"})
	}
	if err := h.Store.SetBayAvailability(c.Request().Context(), id, *req.Available); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "available": *req.Available})
}
