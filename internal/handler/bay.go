package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/booking"
	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
)

// BayHandler serves the public browse endpoints: listing, searching
// and inspecting bays plus the free-slot view for a day.  These
// routes carry no authentication and sit behind the Redis response
// cache.
type BayHandler struct {
	Store *repository.Store
	Svc   *booking.Service
}

func NewBayHandler(store *repository.Store, svc *booking.Service) *BayHandler {
	if store == nil || svc == nil {
		panic("nil dependency passed to NewBayHandler")
	}
	return &BayHandler{Store: store, Svc: svc}
}

type bayResp struct {
	ID         uint64  `json:"id"`
	Title      string  `json:"title"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	PriceCents int64   `json:"price_cents"`
	Available  bool    `json:"available"`
}

func bayRespOf(b *model.ParkingBay) bayResp {
	return bayResp{
		ID:         b.ID,
		Title:      b.Title,
		Latitude:   b.Latitude,
		Longitude:  b.Longitude,
		PriceCents: b.PriceCents,
		Available:  b.Available,
	}
}

func bayListOf(bays []model.ParkingBay) []bayResp {
	out := make([]bayResp, 0, len(bays))
	for i := range bays {
		out = append(out, bayRespOf(&bays[i]))
	}
	return out
}

// List handles GET /v1/bays.
func (h *BayHandler) List(c echo.Context) error {
	bays, err := h.Store.ListBays(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bays": bayListOf(bays)})
}

// Search handles GET /v1/bays/search?q=.  An empty query returns the
// full list, matching the list endpoint.
func (h *BayHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	var (
		bays []model.ParkingBay
		err  error
	)
	if q == "" {
		bays, err = h.Store.ListBays(c.Request().Context())
	} else {
		bays, err = h.Store.SearchBays(c.Request().Context(), q)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bays": bayListOf(bays)})
}

// Get handles GET /v1/bays/:id.
func (h *BayHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	b, err := h.Store.BayByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bayRespOf(b))
}

// Slots handles GET /v1/bays/:id/slots?date=YYYY-MM-DD, returning the
// free intervals within the day's service window.  The date defaults
// to today (UTC).
func (h *BayHandler) Slots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	day := time.Now().UTC()
	if ds := strings.TrimSpace(c.QueryParam("date")); ds != "" {
		parsed, err := time.Parse("2006-01-02", ds)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		day = parsed
	}

	slots, err := h.Svc.AvailableTimeSlots(c.Request().Context(), id, day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"parking_bay_id": id,
		"date":           day.Format("2006-01-02"),
		"slots":          slots,
	})
}

// Availability handles GET /v1/bays/:id/availability?start=&end=
// with RFC 3339 timestamps.  It is the cheap pre-check the booking
// flow runs before taking a slot lock.
func (h *BayHandler) Availability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	start, err1 := time.Parse(time.RFC3339, c.QueryParam("start"))
	end, err2 := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end must be RFC 3339 timestamps"})
	}
	free, err := h.Svc.CheckTimeSlotAvailability(c.Request().Context(), id, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"parking_bay_id": id, "available": free})
}
