package booking

import (
	"math/rand"
	"time"
)

// PriceCents computes the charge for a booking: the duration rounded
// up to whole hours, times the bay's hourly price.  A 1h05m booking
// is charged as two hours.
func PriceCents(start, end time.Time, hourlyCents int64) int64 {
	d := end.Sub(start)
	hours := int64(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours * hourlyCents
}

// PointsForBooking converts a booking charge into loyalty points:
// one point per whole currency unit, plus a random bonus of up to
// 10% of the base.
func PointsForBooking(amountCents int64) int64 {
	base := amountCents / 100
	if base <= 0 {
		return 0
	}
	return base + rand.Int63n(base/10+1)
}
