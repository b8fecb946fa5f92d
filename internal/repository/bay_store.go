package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

const bayColumns = `id, title, latitude, longitude, price_cents, available, created_at, updated_at`

// CreateBay inserts a new parking bay and populates the generated
// ID on the record.
func (q *queries) CreateBay(ctx context.Context, b *model.ParkingBay) error {
	const ins = `INSERT INTO parking_bays (title, latitude, longitude, price_cents, available)
	             VALUES (?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, ins, b.Title, b.Latitude, b.Longitude, b.PriceCents, b.Available)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// UpdateBay rewrites every editable column of the bay.  ErrNotFound
// is returned when no row matched the ID.
func (q *queries) UpdateBay(ctx context.Context, b *model.ParkingBay) error {
	const upd = `UPDATE parking_bays SET title = ?, latitude = ?, longitude = ?, price_cents = ?, available = ?
	             WHERE id = ?`
	res, err := q.db.ExecContext(ctx, upd, b.Title, b.Latitude, b.Longitude, b.PriceCents, b.Available, b.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteBay removes a bay.  Reservations referencing it are kept;
// they are historical records.
func (q *queries) DeleteBay(ctx context.Context, id uint64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM parking_bays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetBayAvailability flips the admin-controlled availability flag.
func (q *queries) SetBayAvailability(ctx context.Context, id uint64, available bool) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE parking_bays SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// BayByID fetches a single bay.
func (q *queries) BayByID(ctx context.Context, id uint64) (*model.ParkingBay, error) {
	var b model.ParkingBay
	err := q.db.QueryRowContext(ctx,
		`SELECT `+bayColumns+` FROM parking_bays WHERE id = ? LIMIT 1`, id).
		Scan(&b.ID, &b.Title, &b.Latitude, &b.Longitude, &b.PriceCents, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBays returns every bay ordered by title for deterministic
// output.
func (q *queries) ListBays(ctx context.Context) ([]model.ParkingBay, error) {
	return q.queryBays(ctx, `SELECT `+bayColumns+` FROM parking_bays ORDER BY title`)
}

// SearchBays returns bays whose title contains the query string,
// case-insensitively per the collation.
func (q *queries) SearchBays(ctx context.Context, query string) ([]model.ParkingBay, error) {
	return q.queryBays(ctx,
		`SELECT `+bayColumns+` FROM parking_bays WHERE title LIKE ? ORDER BY title`,
		"%"+query+"%")
}

func (q *queries) queryBays(ctx context.Context, sqlText string, args ...any) ([]model.ParkingBay, error) {
	rows, err := q.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bays := make([]model.ParkingBay, 0)
	for rows.Next() {
		var b model.ParkingBay
		if err := rows.Scan(&b.ID, &b.Title, &b.Latitude, &b.Longitude, &b.PriceCents,
			&b.Available, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bays = append(bays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bays, nil
}

// requireAffected maps a zero-row update or delete to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
