package schedule

// FreeSlots filters a grid down to the slots that do not overlap any
// booked interval. Chronological order is inherited from the grid.
func FreeSlots(grid []Slot, booked []Interval) []Slot {
	free := make([]Slot, 0, len(grid))
	for _, s := range grid {
		if !OverlapsAny(s.Interval, booked) {
			free = append(free, s)
		}
	}
	return free
}

// RangeFree reports whether an arbitrary (not necessarily grid-aligned)
// range is clear of every booked interval.
func RangeFree(r Interval, booked []Interval) bool {
	return !OverlapsAny(r, booked)
}
