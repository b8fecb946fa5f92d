package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// The ledger is append-only: transactions are inserted once and
// never edited or deleted, and admin actions form an audit trail
// that is only ever read from outside this core.

// InsertTransaction appends a ledger entry and populates the
// generated ID.  Positive amounts are charges, negative ones
// refunds.
func (q *queries) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	const ins = `INSERT INTO transactions (user_id, reservation_id, amount_cents, payment_method, status)
	             VALUES (?, ?, ?, ?, ?)`
	res, err := q.db.ExecContext(ctx, ins,
		t.UserID, t.ReservationID, t.AmountCents, t.PaymentMethod, t.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ChargeByReservation returns the original payment entry for the
// reservation: the earliest positive, non-refund row.  Compensating
// refund entries never match, so a refunded reservation yields
// ErrNoTransaction only when it was never charged at all.
func (q *queries) ChargeByReservation(ctx context.Context, reservationID uint64) (*model.Transaction, error) {
	const sel = `SELECT id, user_id, reservation_id, amount_cents, payment_method, status, created_at
	             FROM transactions
	             WHERE reservation_id = ? AND amount_cents > 0 AND payment_method <> 'refund'
	             ORDER BY id LIMIT 1`
	var t model.Transaction
	err := q.db.QueryRowContext(ctx, sel, reservationID).
		Scan(&t.ID, &t.UserID, &t.ReservationID, &t.AmountCents, &t.PaymentMethod, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoTransaction
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AppendAdminAction writes an audit row for an administrative
// refund or cancellation.
func (q *queries) AppendAdminAction(ctx context.Context, a *model.AdminAction) error {
	const ins = `INSERT INTO admin_actions (admin_id, action, reservation_id) VALUES (?, ?, ?)`
	res, err := q.db.ExecContext(ctx, ins, a.AdminID, a.Action, a.ReservationID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}
