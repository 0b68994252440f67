package schedule

import "fmt"

// ReasonCode classifies why a candidate reservation was rejected. All
// rejections are user-recoverable; none are fatal.
type ReasonCode string

const (
	ReasonMissingSelection      ReasonCode = "missing_selection"
	ReasonMissingTimes          ReasonCode = "missing_times"
	ReasonOutsideBusinessHours  ReasonCode = "outside_business_hours"
	ReasonEndBeforeOrEqualStart ReasonCode = "end_before_or_equal_start"
	ReasonConflict              ReasonCode = "conflict"
)

// ValidationError is a typed rejection of a candidate reservation.
type ValidationError struct {
	Code    ReasonCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func rejectf(code ReasonCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Candidate is the user's raw reservation selection, exactly as entered:
// a room, a calendar date (2006-01-02) and clock times (15:04).
type Candidate struct {
	RoomID    string
	Date      string
	StartTime string
	EndTime   string
}

// Request is a validated, normalized reservation candidate with
// absolute instants anchored to the chosen date.
type Request struct {
	RoomID   string
	Interval Interval
}

// Validate checks a candidate against business hours and a day's booked
// intervals, short-circuiting on the first failure. Checks run in a
// fixed order: selection present, times present, times within business
// hours, end after start, no conflict. On success it returns the
// normalized request.
//
// The booked set must be freshly fetched by the caller; validating
// against stale data and then submitting is not sufficient.
func Validate(c Candidate, hours BusinessHours, booked []Interval) (Request, *ValidationError) {
	if c.RoomID == "" || c.Date == "" {
		return Request{}, rejectf(ReasonMissingSelection, "room and date must be selected")
	}
	day, err := ParseDate(c.Date)
	if err != nil {
		return Request{}, rejectf(ReasonMissingSelection, "invalid date %q", c.Date)
	}

	if c.StartTime == "" || c.EndTime == "" {
		return Request{}, rejectf(ReasonMissingTimes, "start and end times must be chosen")
	}
	startMin, err := ParseClockMinutes(c.StartTime)
	if err != nil {
		return Request{}, rejectf(ReasonMissingTimes, "invalid start time %q", c.StartTime)
	}
	endMin, err := ParseClockMinutes(c.EndTime)
	if err != nil {
		return Request{}, rejectf(ReasonMissingTimes, "invalid end time %q", c.EndTime)
	}

	if !hours.Contains(startMin) {
		return Request{}, rejectf(ReasonOutsideBusinessHours, "start time must be between %s", hours)
	}
	if !hours.Contains(endMin) {
		return Request{}, rejectf(ReasonOutsideBusinessHours, "end time must be between %s", hours)
	}

	if endMin <= startMin {
		return Request{}, rejectf(ReasonEndBeforeOrEqualStart, "end time must be after start time")
	}

	interval := Interval{Start: AtMinute(day, startMin), End: AtMinute(day, endMin)}
	if !RangeFree(interval, booked) {
		return Request{}, rejectf(ReasonConflict, "the selected range is already booked")
	}

	return Request{RoomID: c.RoomID, Interval: interval}, nil
}
