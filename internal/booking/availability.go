package booking

import (
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// Daily service window during which slots can be booked, in the
// day's own location.
const (
	WindowOpenHour  = 8  // 08:00
	WindowCloseHour = 17 // 17:00
)

// Slot is a contiguous free interval on a bay, half-open like
// reservations: [Start, End).
type Slot struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// Overlaps reports whether the half-open intervals [s1, e1) and
// [s2, e2) intersect: each must start before the other ends.  A
// booking ending exactly when another starts does not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// ServiceWindow returns the bookable window for the calendar day
// containing t, in t's location.
func ServiceWindow(t time.Time) (open, close time.Time) {
	y, m, d := t.Date()
	open = time.Date(y, m, d, WindowOpenHour, 0, 0, 0, t.Location())
	close = time.Date(y, m, d, WindowCloseHour, 0, 0, 0, t.Location())
	return open, close
}

// FreeSlots computes the gaps left inside [open, close) by the given
// reservations, which must be sorted by start time ascending.  The
// walk keeps a pointer at the earliest still-free instant: each
// reservation starting after the pointer yields a gap, and the
// pointer then advances to the reservation's end (never backwards,
// so contained or overlapping reservations collapse correctly).  A
// fully booked window yields no slots; an empty day yields one slot
// spanning the whole window.
func FreeSlots(open, close time.Time, reservations []model.Reservation) []Slot {
	slots := make([]Slot, 0, len(reservations)+1)
	cursor := open
	for _, r := range reservations {
		if cursor.Before(r.StartTime) {
			slots = append(slots, Slot{Start: cursor, End: r.StartTime})
		}
		if r.EndTime.After(cursor) {
			cursor = r.EndTime
		}
	}
	if cursor.Before(close) {
		slots = append(slots, Slot{Start: cursor, End: close})
	}
	return slots
}
