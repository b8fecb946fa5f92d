package repository

import (
	"context"
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// Slot locks are advisory holds taken during the payment flow.
// Expired rows are void: every query here filters them out, and
// PurgeExpiredSlotLocks removes them lazily on the next lock attempt
// for the same bay – there is no background reaper.

// InsertSlotLock stores a new advisory hold and populates the
// generated ID.
func (q *queries) InsertSlotLock(ctx context.Context, l *model.SlotLock) error {
	const ins = `INSERT INTO slot_locks (parking_bay_id, start_time, end_time, lock_expiration)
	             VALUES (?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, ins,
		l.ParkingBayID, l.StartTime.UTC(), l.EndTime.UTC(), l.LockExpiration.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// OverlappingSlotLocks counts unexpired holds on the bay whose
// interval overlaps [start, end).
func (q *queries) OverlappingSlotLocks(ctx context.Context, bayID uint64, start, end, now time.Time) (int, error) {
	const sel = `SELECT COUNT(*) FROM slot_locks
	             WHERE parking_bay_id = ? AND start_time < ? AND end_time > ? AND lock_expiration > ?`
	var n int
	if err := q.db.QueryRowContext(ctx, sel, bayID, end.UTC(), start.UTC(), now.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// PurgeExpiredSlotLocks deletes the bay's holds whose expiration has
// passed.
func (q *queries) PurgeExpiredSlotLocks(ctx context.Context, bayID uint64, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM slot_locks WHERE parking_bay_id = ? AND lock_expiration <= ?`,
		bayID, now.UTC())
	return err
}
