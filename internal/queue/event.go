// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// ReservationConfirmedEvent is published after a reservation commits.
// It carries enough context for downstream consumers to log, notify
// or feed analytics without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID  uint64 `json:"reservation_id"`
	UserID         uint64 `json:"user_id"`
	ParkingBayID   uint64 `json:"parking_bay_id"`
	BayTitle       string `json:"bay_title"`
	CarPlate       string `json:"car_plate"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	AmountCents    int64  `json:"amount_cents"`
	PaymentMethod  string `json:"payment_method"`
	LoyaltyBalance int64  `json:"loyalty_balance"`
	ConfirmedAt    string `json:"confirmed_at"`
}
