package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

const reservationColumns = `id, user_id, parking_bay_id, start_time, end_time, status, car_plate, created_at, updated_at`

// occupyingStatuses is the SQL fragment selecting reservations that
// block their time slot.
const occupyingStatuses = `status IN ('active', 'checked-in')`

// InsertReservation stores a new reservation and populates the
// generated ID on the record.  Timestamps are written in UTC.
func (q *queries) InsertReservation(ctx context.Context, r *model.Reservation) error {
	const ins = `INSERT INTO reservations (user_id, parking_bay_id, start_time, end_time, status, car_plate)
	             VALUES (?, ?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, ins,
		r.UserID, r.ParkingBayID, r.StartTime.UTC(), r.EndTime.UTC(), r.Status, r.CarPlate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

// ReservationByID fetches a single reservation.
func (q *queries) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return q.scanReservation(q.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? LIMIT 1`, id))
}

// UpdateReservationStatus overwrites the status column.  It performs
// no state-machine validation; callers are responsible for invoking
// it only along valid edges.  ErrNotFound when no row matched.
func (q *queries) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// OverlappingReservations counts reservations for the bay whose
// interval overlaps [start, end).  Two half-open intervals overlap
// iff each starts before the other ends, so back-to-back bookings
// never count.
func (q *queries) OverlappingReservations(ctx context.Context, bayID uint64, start, end time.Time, occupyingOnly bool) (int, error) {
	sqlText := `SELECT COUNT(*) FROM reservations
	            WHERE parking_bay_id = ? AND start_time < ? AND end_time > ?`
	if occupyingOnly {
		sqlText += ` AND ` + occupyingStatuses
	}
	var n int
	if err := q.db.QueryRowContext(ctx, sqlText, bayID, end.UTC(), start.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ActiveReservationsOn returns the bay's occupying reservations that
// start on the given calendar day, ordered by start time ascending.
// The availability engine walks this list to compute free slots.
func (q *queries) ActiveReservationsOn(ctx context.Context, bayID uint64, day time.Time) ([]model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations
	             WHERE parking_bay_id = ? AND DATE(start_time) = ? AND ` + occupyingStatuses + `
	             ORDER BY start_time`
	return q.queryReservations(ctx, sel, bayID, day.UTC().Format("2006-01-02"))
}

// RecentReservationsByUser returns the user's newest reservations by
// start time.
func (q *queries) RecentReservationsByUser(ctx context.Context, userID uint64, limit int) ([]model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations
	             WHERE user_id = ? ORDER BY start_time DESC LIMIT ?`
	return q.queryReservations(ctx, sel, userID, limit)
}

// ActiveReservationByPlate finds the occupying reservation covering
// the instant `at` for the given car plate, if any.
func (q *queries) ActiveReservationByPlate(ctx context.Context, plate string, at time.Time) (*model.Reservation, error) {
	const sel = `SELECT ` + reservationColumns + ` FROM reservations
	             WHERE car_plate = ? AND ` + occupyingStatuses + ` AND start_time <= ? AND end_time > ?
	             LIMIT 1`
	return q.scanReservation(q.db.QueryRowContext(ctx, sel, plate, at.UTC(), at.UTC()))
}

func (q *queries) scanReservation(row *sql.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.ParkingBayID, &r.StartTime, &r.EndTime,
		&r.Status, &r.CarPlate, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (q *queries) queryReservations(ctx context.Context, sqlText string, args ...any) ([]model.Reservation, error) {
	rows, err := q.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		if err := rows.Scan(&r.ID, &r.UserID, &r.ParkingBayID, &r.StartTime, &r.EndTime,
			&r.Status, &r.CarPlate, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
