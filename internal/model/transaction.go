package model

import "time"

// Transaction is a single immutable entry in the payment ledger.
// A positive amount is a charge, a negative amount is a refund.
// Refunds never edit the original row; they append a compensating
// record with the negated amount and payment method "refund".
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user the money moved for.
//  ReservationID – reservation this entry belongs to.
//  AmountCents   – signed amount in cents.
//  PaymentMethod – method used (e.g. "paynow", "refund").
//  Status        – always "completed" once written.
//  CreatedAt     – creation timestamp.
type Transaction struct {
	ID            uint64    // transactions.id
	UserID        uint64    // transactions.user_id
	ReservationID uint64    // transactions.reservation_id
	AmountCents   int64     // transactions.amount_cents
	PaymentMethod string    // transactions.payment_method
	Status        string    // transactions.status
	CreatedAt     time.Time // transactions.created_at
}

// TxStatusCompleted is the only transaction status this service
// writes; entries are recorded after the (simulated) payment has
// completed.
const TxStatusCompleted = "completed"

// PaymentMethodRefund marks compensating ledger entries created by
// refunds.
const PaymentMethodRefund = "refund"
