package schedule

import "fmt"

// BusinessHours bounds the bookable part of a day, in minutes since
// midnight. Both grid generation and free-form validation use the same
// pair; the bounds check is inclusive at both ends.
type BusinessHours struct {
	OpenMinute  int
	CloseMinute int
}

// DefaultBusinessHours is 08:00-19:00.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{OpenMinute: 8 * 60, CloseMinute: 19 * 60}
}

func (h BusinessHours) Valid() bool {
	return h.OpenMinute >= 0 && h.CloseMinute <= 24*60 && h.OpenMinute < h.CloseMinute
}

func (h BusinessHours) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		h.OpenMinute/60, h.OpenMinute%60, h.CloseMinute/60, h.CloseMinute%60)
}

// Contains reports whether a minute-of-day lies within [open, close].
func (h BusinessHours) Contains(minuteOfDay int) bool {
	return minuteOfDay >= h.OpenMinute && minuteOfDay <= h.CloseMinute
}
