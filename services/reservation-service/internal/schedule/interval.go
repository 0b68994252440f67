package schedule

import "time"

// Interval is a half-open time range [Start, End). The end instant is
// excluded, so back-to-back reservations never conflict.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
// Touching endpoints (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// OverlapsAny reports whether r intersects at least one of the given intervals.
func OverlapsAny(r Interval, booked []Interval) bool {
	for _, b := range booked {
		if Overlaps(r, b) {
			return true
		}
	}
	return false
}
