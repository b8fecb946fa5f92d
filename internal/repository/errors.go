// Package repository implements the persistence layer on top of a
// relational store and defines the sentinel errors shared by the
// higher layers.  These sentinel values let handlers and the booking
// service distinguish failure scenarios without leaking storage
// internals: a duplicate-key violation surfaces as ErrDuplicateEmail,
// a booking-time overlap as ErrSlotConflict, and so on.  Anything not
// covered by a sentinel is an infrastructural storage failure and is
// propagated wrapped, never swallowed.
package repository

import "errors"

// ErrNotFound is returned when an operation targets a row that does
// not exist (missing user, bay or reservation).  Handlers translate
// this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registration hits the unique
// email constraint.  It replaces the raw storage error so the
// message shown to users never leaks schema details.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrSlotConflict signals that the requested interval overlaps an
// existing reservation or an unexpired slot lock.  It is recoverable:
// the caller can pick a different slot.
var ErrSlotConflict = errors.New("time slot not available")

// ErrBayUnavailable is returned when a booking targets a bay whose
// admin-controlled availability flag is off.
var ErrBayUnavailable = errors.New("parking bay unavailable")

// ErrNoTransaction is returned when a refund is requested for a
// reservation that has no payment record to compensate.
var ErrNoTransaction = errors.New("no transaction for reservation")

// ErrAlreadyRefunded guards the ledger against double refunds: a
// reservation already in the refunded state cannot produce a second
// compensating entry.
var ErrAlreadyRefunded = errors.New("reservation already refunded")

// ErrInsufficientPoints is returned when a loyalty decrement would
// take the stored balance below zero.  The balance is left untouched.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// ErrForbidden is returned when the caller attempts an operation on
// a resource they do not own.  Handlers translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because
// of the resource's current state, such as checking in a reservation
// that is not active.  Handlers translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")
