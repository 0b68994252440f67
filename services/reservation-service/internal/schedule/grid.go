package schedule

import (
	"fmt"
	"time"
)

// Slot is one fixed-duration bookable unit of a day's grid.
type Slot struct {
	Label    string
	Interval Interval
}

// Grid builds the ordered slot sequence for a calendar day: slots start
// at the opening minute and step by slotMinutes for as long as a full
// slot fits before closing. A trailing partial slot is dropped.
//
// Degenerate inputs (non-positive duration, open >= close) yield an
// empty grid rather than an error.
func Grid(day time.Time, hours BusinessHours, slotMinutes int) []Slot {
	if slotMinutes <= 0 || !hours.Valid() {
		return nil
	}

	var slots []Slot
	for start := hours.OpenMinute; start+slotMinutes <= hours.CloseMinute; start += slotMinutes {
		end := start + slotMinutes
		slots = append(slots, Slot{
			Label: fmt.Sprintf("%02d:%02d - %02d:%02d", start/60, start%60, end/60, end%60),
			Interval: Interval{
				Start: AtMinute(day, start),
				End:   AtMinute(day, end),
			},
		})
	}
	return slots
}
