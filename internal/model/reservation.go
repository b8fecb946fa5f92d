package model

import "time"

// Reservation statuses.  A reservation starts out active; it may be
// checked in and later completed, or it may be cancelled or refunded
// by an admin.  Cancelled and refunded are terminal.  Reservations
// are never physically deleted – status transitions are the only
// mutation.
const (
	StatusActive    = "active"
	StatusCheckedIn = "checked-in"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

// ValidStatus reports whether s is one of the recognised
// reservation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusCheckedIn, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Occupying reports whether a reservation in status s occupies its
// time slot.  Active and checked-in reservations block overlapping
// bookings; completed, cancelled and refunded ones do not.
func Occupying(s string) bool {
	return s == StatusActive || s == StatusCheckedIn
}

// Reservation records a user's exclusive booking of a parking bay
// for a half-open time interval [StartTime, EndTime).  The core
// invariant is that, per bay, no two occupying reservations overlap.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who made the reservation.
//  ParkingBayID – bay being reserved.
//  StartTime    – inclusive start of the slot (UTC).
//  EndTime      – exclusive end of the slot (UTC), after StartTime.
//  Status       – current lifecycle state.
//  CarPlate     – plate of the car occupying the bay.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Reservation struct {
	ID           uint64    // reservations.id
	UserID       uint64    // reservations.user_id
	ParkingBayID uint64    // reservations.parking_bay_id
	StartTime    time.Time // reservations.start_time
	EndTime      time.Time // reservations.end_time
	Status       string    // reservations.status
	CarPlate     string    // reservations.car_plate
	CreatedAt    time.Time // reservations.created_at
	UpdatedAt    time.Time // reservations.updated_at
}
