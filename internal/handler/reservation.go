package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/booking"
	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/queue"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
	"github.com/iliyamo/parking-bay-reservation/internal/service"
)

// ReservationHandler serves the customer booking surface.  All
// methods assume JWT authentication ran; the gate plate check is the
// one exception and is registered publicly for barrier hardware.
type ReservationHandler struct {
	Svc   *booking.Service
	Store *repository.Store
}

func NewReservationHandler(svc *booking.Service, store *repository.Store) *ReservationHandler {
	if svc == nil || store == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc, Store: store}
}

type createReservationReq struct {
	ParkingBayID  uint64    `json:"parking_bay_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	CarPlate      string    `json:"car_plate"`
	PaymentMethod string    `json:"payment_method"`
}

type reservationResp struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	ParkingBayID uint64    `json:"parking_bay_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	CarPlate     string    `json:"car_plate"`
}

func reservationRespOf(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:           r.ID,
		UserID:       r.UserID,
		ParkingBayID: r.ParkingBayID,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Status:       r.Status,
		CarPlate:     r.CarPlate,
	}
}

// Create handles POST /v1/reservations.  On success it responds 201
// with the reservation and payment, then publishes the confirmation
// event in the background; a broker outage never fails the booking.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.CarPlate = strings.ToUpper(strings.TrimSpace(req.CarPlate))
	if req.CarPlate == "" {
		// Fall back to the plate on the user's profile.
		if u, err := h.Store.UserByID(c.Request().Context(), userID); err == nil {
			req.CarPlate = u.CarPlate
		}
	}

	res, pay, err := h.Svc.CreateReservation(c.Request().Context(), booking.CreateInput{
		UserID:        userID,
		ParkingBayID:  req.ParkingBayID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		CarPlate:      req.CarPlate,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return respondError(c, err)
	}

	go h.publishConfirmed(res, pay)

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": reservationRespOf(res),
		"payment": echo.Map{
			"id":             pay.ID,
			"amount_cents":   pay.AmountCents,
			"payment_method": pay.PaymentMethod,
			"status":         pay.Status,
		},
	})
}

// publishConfirmed enriches the event with the bay title and loyalty
// balance and hands it to the broker.  Failures are logged only.
func (h *ReservationHandler) publishConfirmed(res *model.Reservation, pay *model.Transaction) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ParkingBayID:  res.ParkingBayID,
		CarPlate:      res.CarPlate,
		StartTime:     res.StartTime.Format(time.RFC3339),
		EndTime:       res.EndTime.Format(time.RFC3339),
		AmountCents:   pay.AmountCents,
		PaymentMethod: pay.PaymentMethod,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if bay, err := h.Store.BayByID(ctx, res.ParkingBayID); err == nil {
		ev.BayTitle = bay.Title
	}
	if u, err := h.Store.UserByID(ctx, res.UserID); err == nil {
		ev.LoyaltyBalance = u.LoyaltyPoints
	}
	if err := service.PublishReservationConfirmed(ctx, ev); err != nil {
		log.Printf("reservation %d: publish confirmed event failed: %v", res.ID, err)
	}
}

// Recent handles GET /v1/reservations/recent?limit=.
func (h *ReservationHandler) Recent(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 0
	if ls := c.QueryParam("limit"); ls != "" {
		if n, err := strconv.Atoi(ls); err == nil {
			limit = n
		}
	}
	list, err := h.Svc.RecentReservations(c.Request().Context(), userID, limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]reservationResp, 0, len(list))
	for i := range list {
		out = append(out, reservationRespOf(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get handles GET /v1/reservations/:id.  Customers see only their
// own reservations; admins see all.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.ReservationByID(c.Request().Context(), id, userID, isAdmin(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reservationRespOf(res))
}

type lockSlotReq struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// LockSlot handles POST /v1/bays/:id/lock.  It places the five-minute
// advisory hold used by the payment flow.
func (h *ReservationHandler) LockSlot(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bayID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bay id"})
	}
	var req lockSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sl, err := h.Svc.CheckAndLockTimeSlot(c.Request().Context(), bayID, req.StartTime, req.EndTime)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":              sl.ID,
		"parking_bay_id":  sl.ParkingBayID,
		"start_time":      sl.StartTime,
		"end_time":        sl.EndTime,
		"lock_expiration": sl.LockExpiration,
	})
}

// CheckIn handles POST /v1/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	return h.transition(c, h.Svc.CheckIn)
}

// CheckOut handles POST /v1/reservations/:id/check-out.
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	return h.transition(c, h.Svc.CheckOut)
}

func (h *ReservationHandler) transition(c echo.Context, op func(context.Context, uint64, uint64) error) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := op(c.Request().Context(), userID, id); err != nil {
		return respondError(c, err)
	}
	res, err := h.Store.ReservationByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reservationRespOf(res))
}

// CheckPlate handles GET /v1/plates/:plate/reservation, the gate
// barrier lookup.  It answers whether the car has an occupying
// reservation covering the current instant.
func (h *ReservationHandler) CheckPlate(c echo.Context) error {
	plate := strings.ToUpper(strings.TrimSpace(c.Param("plate")))
	res, err := h.Svc.CheckCarReservation(c.Request().Context(), plate)
	if err != nil {
		return respondError(c, err)
	}
	if res == nil {
		return c.JSON(http.StatusOK, echo.Map{"is_valid": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"is_valid": true, "reservation": reservationRespOf(res)})
}
