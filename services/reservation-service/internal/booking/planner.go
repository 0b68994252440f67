package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
)

// ErrSelectionChanged reports that the room or date changed while a
// fetch was in flight; the stale result was discarded.
var ErrSelectionChanged = errors.New("selection changed while loading availability")

// Planner tracks one user's current room+date selection and computes
// the free-slot grid for it. Fetch completions are checked against a
// generation counter so an out-of-order response for a superseded
// selection never overwrites fresher state.
type Planner struct {
	source      IntervalSource
	hours       schedule.BusinessHours
	slotMinutes int

	mu     sync.Mutex
	gen    uint64
	roomID string
	date   string
}

func NewPlanner(source IntervalSource, hours schedule.BusinessHours, slotMinutes int) *Planner {
	return &Planner{source: source, hours: hours, slotMinutes: slotMinutes}
}

// Select records a new room+date selection and invalidates any fetch
// still in flight for the previous one.
func (p *Planner) Select(roomID, date string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomID = roomID
	p.date = date
	p.gen++
}

// FreeSlots fetches the booked intervals for the current selection and
// returns the grid slots that remain free. If the selection changes
// during the fetch the result is dropped and ErrSelectionChanged is
// returned instead.
func (p *Planner) FreeSlots(ctx context.Context) ([]schedule.Slot, error) {
	p.mu.Lock()
	gen := p.gen
	roomID := p.roomID
	date := p.date
	p.mu.Unlock()

	if roomID == "" || date == "" {
		return nil, nil
	}
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, err
	}

	booked, err := p.source.BookedIntervals(ctx, roomID, day)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	stale := p.gen != gen
	p.mu.Unlock()
	if stale {
		return nil, ErrSelectionChanged
	}

	grid := schedule.Grid(day, p.hours, p.slotMinutes)
	return schedule.FreeSlots(grid, booked), nil
}
