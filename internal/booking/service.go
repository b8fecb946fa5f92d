// Package booking implements the reservation core: availability
// computation, ceil-hour pricing, loyalty accrual and the lifecycle
// operations that tie them together atomically.
package booking

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/lock"
	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
)

// DefaultPaymentMethod is recorded when the client does not name one.
const DefaultPaymentMethod = "paynow"

// recentLimit is the default page size for a user's booking history.
const recentLimit = 5

// Store is what the service needs from persistence: the full query
// surface plus the ability to run a sequence of writes atomically.
// *repository.Store satisfies it against MySQL; tests provide an
// in-memory implementation.
type Store interface {
	repository.Tx
	Atomic(ctx context.Context, fn func(tx repository.Tx) error) error
}

// Service owns the booking lifecycle.  All multi-write operations go
// through Store.Atomic, and every create/lock attempt on a bay is
// additionally serialized through the per-bay keyed mutex so two
// concurrent requests for the same bay cannot both pass the
// availability check.
type Service struct {
	store Store
	locks *lock.Keyed
	now   func() time.Time
}

// New returns a Service over the given store.
func New(store Store) *Service {
	return &Service{
		store: store,
		locks: lock.NewKeyed(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func bayKey(id uint64) string { return "bay:" + strconv.FormatUint(id, 10) }

// CreateInput carries a reservation request.
type CreateInput struct {
	UserID        uint64
	ParkingBayID  uint64
	StartTime     time.Time
	EndTime       time.Time
	CarPlate      string
	PaymentMethod string
}

// CreateReservation books a bay for [StartTime, EndTime).  Inside a
// single transaction it re-checks availability, inserts the
// reservation, records the payment and accrues loyalty points; any
// failure rolls the whole sequence back.  On success the returned
// reservation and ledger entry carry their generated IDs.
func (s *Service) CreateReservation(ctx context.Context, in CreateInput) (*model.Reservation, *model.Transaction, error) {
	if err := model.ValidateBookingInput(in.UserID, in.ParkingBayID, in.StartTime, in.EndTime, in.CarPlate); err != nil {
		return nil, nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	release, err := s.locks.Acquire(ctx, bayKey(in.ParkingBayID))
	if err != nil {
		return nil, nil, err
	}
	defer release()

	var (
		res model.Reservation
		pay model.Transaction
	)
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()
		if err := tx.PurgeExpiredSlotLocks(ctx, in.ParkingBayID, now); err != nil {
			return err
		}
		bay, err := tx.BayByID(ctx, in.ParkingBayID)
		if err != nil {
			return err
		}
		if !bay.Available {
			return repository.ErrBayUnavailable
		}
		n, err := tx.OverlappingReservations(ctx, in.ParkingBayID, in.StartTime, in.EndTime, true)
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrSlotConflict
		}

		res = model.Reservation{
			UserID:       in.UserID,
			ParkingBayID: in.ParkingBayID,
			StartTime:    in.StartTime.UTC(),
			EndTime:      in.EndTime.UTC(),
			Status:       model.StatusActive,
			CarPlate:     in.CarPlate,
		}
		if err := tx.InsertReservation(ctx, &res); err != nil {
			return err
		}

		pay = model.Transaction{
			UserID:        in.UserID,
			ReservationID: res.ID,
			AmountCents:   PriceCents(in.StartTime, in.EndTime, bay.PriceCents),
			PaymentMethod: method,
			Status:        model.TxStatusCompleted,
		}
		if err := tx.InsertTransaction(ctx, &pay); err != nil {
			return err
		}

		if points := PointsForBooking(pay.AmountCents); points > 0 {
			if err := tx.AddLoyaltyPoints(ctx, in.UserID, points); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &res, &pay, nil
}

// RefundReservation flips the reservation to refunded, appends the
// compensating ledger entry for the original charge and records the
// admin audit row, all in one transaction.  A second refund of the
// same reservation fails with ErrAlreadyRefunded and writes nothing.
func (s *Service) RefundReservation(ctx context.Context, reservationID, adminID uint64) (*model.Transaction, error) {
	var refund model.Transaction
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		res, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status == model.StatusRefunded {
			return repository.ErrAlreadyRefunded
		}
		if err := tx.UpdateReservationStatus(ctx, reservationID, model.StatusRefunded); err != nil {
			return err
		}
		charge, err := tx.ChargeByReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		refund = model.Transaction{
			UserID:        charge.UserID,
			ReservationID: reservationID,
			AmountCents:   -charge.AmountCents,
			PaymentMethod: model.PaymentMethodRefund,
			Status:        model.TxStatusCompleted,
		}
		if err := tx.InsertTransaction(ctx, &refund); err != nil {
			return err
		}
		return tx.AppendAdminAction(ctx, &model.AdminAction{
			AdminID:       adminID,
			Action:        model.AdminActionRefund,
			ReservationID: reservationID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// CancelReservation flips the reservation to cancelled and records
// the admin audit row.  No money moves; a cancelled slot simply stops
// occupying its interval.
func (s *Service) CancelReservation(ctx context.Context, reservationID, adminID uint64) error {
	return s.store.Atomic(ctx, func(tx repository.Tx) error {
		if err := tx.UpdateReservationStatus(ctx, reservationID, model.StatusCancelled); err != nil {
			return err
		}
		return tx.AppendAdminAction(ctx, &model.AdminAction{
			AdminID:       adminID,
			Action:        model.AdminActionCancel,
			ReservationID: reservationID,
		})
	})
}

// UpdateReservationStatus sets an arbitrary recognised status.  The
// richer transitions (check-in, refund) have their own operations;
// this one backs the admin surface.
func (s *Service) UpdateReservationStatus(ctx context.Context, reservationID uint64, status string) error {
	if !model.ValidStatus(status) {
		return &model.ValidationError{Fields: []string{"status"}}
	}
	return s.store.UpdateReservationStatus(ctx, reservationID, status)
}

// CheckIn moves the caller's active reservation to checked-in.  Only
// the owner may check in, and only from the active state.
func (s *Service) CheckIn(ctx context.Context, userID, reservationID uint64) error {
	return s.transition(ctx, userID, reservationID, model.StatusActive, model.StatusCheckedIn)
}

// CheckOut moves the caller's checked-in reservation to completed.
func (s *Service) CheckOut(ctx context.Context, userID, reservationID uint64) error {
	return s.transition(ctx, userID, reservationID, model.StatusCheckedIn, model.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, userID, reservationID uint64, from, to string) error {
	return s.store.Atomic(ctx, func(tx repository.Tx) error {
		res, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.UserID != userID {
			return repository.ErrForbidden
		}
		if res.Status != from {
			return repository.ErrConflict
		}
		return tx.UpdateReservationStatus(ctx, reservationID, to)
	})
}

// UpdateLoyaltyPoints adjusts a user's balance by delta (positive or
// negative).  A decrement past zero is rejected with
// ErrInsufficientPoints and leaves the balance untouched.
func (s *Service) UpdateLoyaltyPoints(ctx context.Context, userID uint64, delta int64) error {
	return s.store.AddLoyaltyPoints(ctx, userID, delta)
}

// AvailableTimeSlots lists the free intervals on a bay within the
// service window of the given day.  Only occupying reservations
// consume time; cancelled and refunded ones free their slot.
func (s *Service) AvailableTimeSlots(ctx context.Context, bayID uint64, day time.Time) ([]Slot, error) {
	if _, err := s.store.BayByID(ctx, bayID); err != nil {
		return nil, err
	}
	reservations, err := s.store.ActiveReservationsOn(ctx, bayID, day)
	if err != nil {
		return nil, err
	}
	open, close := ServiceWindow(day.UTC())
	return FreeSlots(open, close, reservations), nil
}

// CheckTimeSlotAvailability reports whether [start, end) is free of
// occupying reservations on the bay.  Advisory slot locks are not
// consulted here; this is the cheap pre-check, CheckAndLockTimeSlot
// is the authoritative one.
func (s *Service) CheckTimeSlotAvailability(ctx context.Context, bayID uint64, start, end time.Time) (bool, error) {
	if bayID == 0 || start.IsZero() || end.IsZero() || !end.After(start) {
		return false, &model.ValidationError{Fields: []string{"startTime", "endTime"}}
	}
	n, err := s.store.OverlappingReservations(ctx, bayID, start, end, true)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// CheckAndLockTimeSlot verifies that [start, end) is clear of
// reservations of any status and of unexpired locks, then persists a
// fresh advisory hold expiring after model.SlotLockTTL.  The check
// and the insert run under the bay's keyed mutex and inside one
// transaction, so two payment flows cannot hold the same interval.
func (s *Service) CheckAndLockTimeSlot(ctx context.Context, bayID uint64, start, end time.Time) (*model.SlotLock, error) {
	if bayID == 0 || start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, &model.ValidationError{Fields: []string{"startTime", "endTime"}}
	}

	release, err := s.locks.Acquire(ctx, bayKey(bayID))
	if err != nil {
		return nil, err
	}
	defer release()

	var sl model.SlotLock
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		now := s.now()
		if err := tx.PurgeExpiredSlotLocks(ctx, bayID, now); err != nil {
			return err
		}
		nRes, err := tx.OverlappingReservations(ctx, bayID, start, end, false)
		if err != nil {
			return err
		}
		nLocks, err := tx.OverlappingSlotLocks(ctx, bayID, start, end, now)
		if err != nil {
			return err
		}
		if nRes > 0 || nLocks > 0 {
			return repository.ErrSlotConflict
		}
		sl = model.SlotLock{
			ParkingBayID:   bayID,
			StartTime:      start.UTC(),
			EndTime:        end.UTC(),
			LockExpiration: now.Add(model.SlotLockTTL),
		}
		return tx.InsertSlotLock(ctx, &sl)
	})
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

// RecentReservations returns the user's latest bookings, newest
// first.  A non-positive limit falls back to the default page size.
func (s *Service) RecentReservations(ctx context.Context, userID uint64, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = recentLimit
	}
	return s.store.RecentReservationsByUser(ctx, userID, limit)
}

// CheckCarReservation looks up the occupying reservation covering the
// given plate right now.  It returns (nil, nil) when the car has no
// valid booking, so gate hardware can distinguish "not booked" from a
// storage failure.
func (s *Service) CheckCarReservation(ctx context.Context, plate string) (*model.Reservation, error) {
	if !model.ValidPlate(plate) {
		return nil, &model.ValidationError{Fields: []string{"carPlate"}}
	}
	res, err := s.store.ActiveReservationByPlate(ctx, plate, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

// ReservationByID fetches one reservation.  Non-admin callers only
// see their own; others get ErrForbidden.
func (s *Service) ReservationByID(ctx context.Context, reservationID, callerID uint64, admin bool) (*model.Reservation, error) {
	res, err := s.store.ReservationByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !admin && res.UserID != callerID {
		return nil, repository.ErrForbidden
	}
	return res, nil
}
