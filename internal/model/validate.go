package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Construction rules for the domain entities.  Validation runs
// before any persistence attempt so that a bad request never leaves
// partial writes behind.  Failures carry the offending field names
// so handlers can tell the user exactly what to fix.

// MinPasswordLen is the canonical minimum password length.  The
// storage layer enforces 8 characters everywhere; there is no laxer
// UI-side policy.
const MinPasswordLen = 8

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]{10,14}$`)
	plateRe = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
)

// ValidationError reports which fields failed construction rules.
// It is recoverable: callers surface the field list so the user can
// be re-prompted.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Fields, ", "))
}

// errOrNil wraps the collected field names, or returns nil when
// everything validated.
func errOrNil(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidateNewUser checks the registration input shape.  The plate is
// optional (empty means the user has no default plate on file).
func ValidateNewUser(email, password, fullName, phoneNumber, carPlate string) error {
	var bad []string
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		bad = append(bad, "email")
	}
	if len(password) < MinPasswordLen {
		bad = append(bad, "password")
	}
	if len(strings.TrimSpace(fullName)) < 2 {
		bad = append(bad, "fullName")
	}
	if !phoneRe.MatchString(phoneNumber) {
		bad = append(bad, "phoneNumber")
	}
	if carPlate != "" && !plateRe.MatchString(carPlate) {
		bad = append(bad, "carPlate")
	}
	return errOrNil(bad)
}

// ValidateBay checks a parking bay's shape: non-empty title,
// coordinates inside the WGS84 envelope and a positive hourly price.
func ValidateBay(b *ParkingBay) error {
	var bad []string
	if strings.TrimSpace(b.Title) == "" {
		bad = append(bad, "title")
	}
	if b.Latitude < -90 || b.Latitude > 90 {
		bad = append(bad, "latitude")
	}
	if b.Longitude < -180 || b.Longitude > 180 {
		bad = append(bad, "longitude")
	}
	if b.PriceCents <= 0 {
		bad = append(bad, "price")
	}
	return errOrNil(bad)
}

// ValidPlate reports whether s is a well-formed car plate: 1-10
// uppercase alphanumerics.
func ValidPlate(s string) bool {
	return plateRe.MatchString(s)
}

// ValidateBookingInput checks the shape of a reservation request:
// positive identifiers, a well-formed half-open interval and a
// plate of 1-10 uppercase alphanumerics.
func ValidateBookingInput(userID, bayID uint64, start, end time.Time, carPlate string) error {
	var bad []string
	if userID == 0 {
		bad = append(bad, "userId")
	}
	if bayID == 0 {
		bad = append(bad, "parkingBayId")
	}
	if start.IsZero() {
		bad = append(bad, "startTime")
	}
	if end.IsZero() || !end.After(start) {
		bad = append(bad, "endTime")
	}
	if !plateRe.MatchString(carPlate) {
		bad = append(bad, "carPlate")
	}
	return errOrNil(bad)
}
