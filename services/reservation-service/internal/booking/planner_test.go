package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
)

// switchingSource lets a test change the planner's selection while the
// fetch for the previous selection is still in flight.
type switchingSource struct {
	booked   []schedule.Interval
	onFetch  func()
	fetchErr error
}

func (s *switchingSource) BookedIntervals(_ context.Context, _ string, _ time.Time) ([]schedule.Interval, error) {
	if s.onFetch != nil {
		s.onFetch()
	}
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.booked, nil
}

func TestPlannerFreeSlots(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	source := &switchingSource{
		booked: []schedule.Interval{{
			Start: schedule.AtMinute(day, 10*60),
			End:   schedule.AtMinute(day, 12*60),
		}},
	}
	planner := NewPlanner(source, schedule.BusinessHours{OpenMinute: 8 * 60, CloseMinute: 18 * 60}, 60)
	planner.Select("room-1", "2026-03-09")

	slots, err := planner.FreeSlots(context.Background())
	if err != nil {
		t.Fatalf("FreeSlots failed: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 free slots, got %d", len(slots))
	}
}

func TestPlannerNoSelectionYieldsNothing(t *testing.T) {
	planner := NewPlanner(&switchingSource{}, schedule.DefaultBusinessHours(), 60)
	slots, err := planner.FreeSlots(context.Background())
	if err != nil {
		t.Fatalf("FreeSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots without a selection, got %d", len(slots))
	}
}

func TestPlannerDiscardsStaleFetch(t *testing.T) {
	source := &switchingSource{}
	planner := NewPlanner(source, schedule.DefaultBusinessHours(), 60)
	planner.Select("room-1", "2026-03-09")

	// The user switches rooms while the fetch is in flight.
	source.onFetch = func() {
		planner.Select("room-2", "2026-03-09")
	}

	_, err := planner.FreeSlots(context.Background())
	if !errors.Is(err, ErrSelectionChanged) {
		t.Fatalf("expected ErrSelectionChanged, got %v", err)
	}

	// The fresh selection still loads normally.
	source.onFetch = nil
	slots, err := planner.FreeSlots(context.Background())
	if err != nil {
		t.Fatalf("FreeSlots after reselect failed: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots for the new selection")
	}
}

func TestPlannerPropagatesFetchErrors(t *testing.T) {
	source := &switchingSource{fetchErr: errors.New("boom")}
	planner := NewPlanner(source, schedule.DefaultBusinessHours(), 60)
	planner.Select("room-1", "2026-03-09")

	if _, err := planner.FreeSlots(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}
