package schedule

import (
	"fmt"
	"time"
)

// Stamp is the wire format for instants at the persistence boundary:
// naive local date-time, seconds precision, no zone suffix.
const Stamp = "2006-01-02T15:04:05"

// DateOnly is the calendar-date format used for day selection.
const DateOnly = "2006-01-02"

// Clock is the wall-clock format for start/end entry.
const Clock = "15:04"

func ParseStamp(s string) (time.Time, error) {
	return time.ParseInLocation(Stamp, s, time.Local)
}

func FormatStamp(t time.Time) string {
	return t.Format(Stamp)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateOnly, s, time.Local)
}

// ParseClockMinutes converts "HH:MM" to minutes since midnight.
func ParseClockMinutes(s string) (int, error) {
	t, err := time.Parse(Clock, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AtMinute anchors a minute-of-day to the calendar date of day, keeping
// local wall-clock semantics (no timezone conversion).
func AtMinute(day time.Time, minuteOfDay int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, day.Location())
}

// DayBounds returns the [midnight, next midnight) interval for day.
func DayBounds(day time.Time) Interval {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}
