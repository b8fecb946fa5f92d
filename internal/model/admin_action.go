package model

import "time"

// Admin actions recorded in the audit trail.
const (
	AdminActionRefund = "refund"
	AdminActionCancel = "cancel"
)

// AdminAction is an append-only audit record of an administrative
// intervention on a reservation.  Rows are written inside the same
// transaction as the refund or cancellation they describe and are
// never updated or deleted by this service.
//
// Fields:
//  ID            – primary key identifier.
//  AdminID       – admin who performed the action.
//  Action        – "refund" or "cancel".
//  ReservationID – reservation acted upon.
//  CreatedAt     – when the action happened.
type AdminAction struct {
	ID            uint64    // admin_actions.id
	AdminID       uint64    // admin_actions.admin_id
	Action        string    // admin_actions.action
	ReservationID uint64    // admin_actions.reservation_id
	CreatedAt     time.Time // admin_actions.created_at
}
