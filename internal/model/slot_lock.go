package model

import "time"

// SlotLockTTL is how long a persisted slot lock holds a candidate
// interval while the payment flow runs.
const SlotLockTTL = 5 * time.Minute

// SlotLock is a short-lived advisory hold on a candidate time slot,
// taken while a user goes through the payment flow and before the
// reservation is finalised.  Expired locks are ignored by every
// query and purged lazily; a lock that outlives its booking attempt
// must never block future availability checks.
//
// Fields:
//  ID             – primary key identifier.
//  ParkingBayID   – bay the interval belongs to.
//  StartTime      – inclusive start of the held interval.
//  EndTime        – exclusive end of the held interval.
//  LockExpiration – instant after which the lock is void.
//  CreatedAt      – creation timestamp.
type SlotLock struct {
	ID             uint64    // slot_locks.id
	ParkingBayID   uint64    // slot_locks.parking_bay_id
	StartTime      time.Time // slot_locks.start_time
	EndTime        time.Time // slot_locks.end_time
	LockExpiration time.Time // slot_locks.lock_expiration
	CreatedAt      time.Time // slot_locks.created_at
}
