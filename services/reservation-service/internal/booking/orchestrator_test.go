package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
)

// fakeStore serves canned intervals and records create attempts. It can
// inject a conflict or transport error on create, and can grow its
// booked set between the fetch and the create to simulate a lost race.
type fakeStore struct {
	booked       []schedule.Interval
	fetchErr     error
	createErr    error
	creates      int
	fetches      int
	bookOnCreate bool
}

func (s *fakeStore) BookedIntervals(_ context.Context, _ string, _ time.Time) ([]schedule.Interval, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.booked, nil
}

func (s *fakeStore) CreateReservation(_ context.Context, _ string, req schedule.Request) (Created, error) {
	s.creates++
	if s.createErr != nil {
		return Created{}, s.createErr
	}
	if s.bookOnCreate {
		// Another session committed first: the store's constraint wins.
		s.bookOnCreate = false
		return Created{}, ErrAlreadyBooked
	}
	s.booked = append(s.booked, req.Interval)
	return Created{ID: "res-1", RoomID: req.RoomID, Start: req.Interval.Start, End: req.Interval.End}, nil
}

func candidate() schedule.Candidate {
	return schedule.Candidate{
		RoomID:    "room-1",
		Date:      "2026-03-09",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestSubmitCreatesWhenFree(t *testing.T) {
	store := &fakeStore{}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	created, err := orch.Submit(context.Background(), "user-1", candidate())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if created.ID != "res-1" || created.RoomID != "room-1" {
		t.Fatalf("unexpected result: %+v", created)
	}
	if store.fetches != 1 || store.creates != 1 {
		t.Fatalf("expected exactly one fetch and one create, got %d/%d", store.fetches, store.creates)
	}
}

func TestSubmitRevalidatesAgainstFreshBookings(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	store := &fakeStore{
		booked: []schedule.Interval{{
			Start: schedule.AtMinute(day, 10*60),
			End:   schedule.AtMinute(day, 11*60),
		}},
	}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	_, err := orch.Submit(context.Background(), "user-1", candidate())
	var verr *schedule.ValidationError
	if !errors.As(err, &verr) || verr.Code != schedule.ReasonConflict {
		t.Fatalf("expected conflict rejection, got %v", err)
	}
	if store.creates != 0 {
		t.Fatal("create must not be attempted after a validation rejection")
	}
}

func TestSubmitSurfacesValidationReasons(t *testing.T) {
	store := &fakeStore{}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	cases := []struct {
		mutate func(*schedule.Candidate)
		want   schedule.ReasonCode
	}{
		{func(c *schedule.Candidate) { c.RoomID = "" }, schedule.ReasonMissingSelection},
		{func(c *schedule.Candidate) { c.Date = "bogus" }, schedule.ReasonMissingSelection},
		{func(c *schedule.Candidate) { c.StartTime = "" }, schedule.ReasonMissingTimes},
		{func(c *schedule.Candidate) { c.StartTime = "07:00" }, schedule.ReasonOutsideBusinessHours},
		{func(c *schedule.Candidate) { c.EndTime = "10:00" }, schedule.ReasonEndBeforeOrEqualStart},
	}
	for _, tc := range cases {
		c := candidate()
		tc.mutate(&c)
		_, err := orch.Submit(context.Background(), "user-1", c)
		var verr *schedule.ValidationError
		if !errors.As(err, &verr) || verr.Code != tc.want {
			t.Fatalf("candidate %+v: expected %s, got %v", c, tc.want, err)
		}
	}
	if store.creates != 0 {
		t.Fatalf("no create attempt expected, got %d", store.creates)
	}
}

func TestSubmitLostRaceSurfacesServerRejected(t *testing.T) {
	store := &fakeStore{bookOnCreate: true}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	_, err := orch.Submit(context.Background(), "user-1", candidate())
	if !errors.Is(err, ErrServerRejected) {
		t.Fatalf("expected ErrServerRejected, got %v", err)
	}
	if store.creates != 1 {
		t.Fatalf("expected a single create attempt with no retry, got %d", store.creates)
	}
}

func TestSubmitFetchFailurePreventsCreate(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("connection refused")}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	_, err := orch.Submit(context.Background(), "user-1", candidate())
	if err == nil {
		t.Fatal("expected fetch error")
	}
	var verr *schedule.ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("transport failure must not look like a validation rejection: %v", err)
	}
	if store.creates != 0 {
		t.Fatal("create must not run when the fresh fetch failed")
	}
}

func TestSubmitCreateFailureIsNotRetried(t *testing.T) {
	store := &fakeStore{createErr: errors.New("server unavailable")}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	_, err := orch.Submit(context.Background(), "user-1", candidate())
	if err == nil {
		t.Fatal("expected create error")
	}
	if errors.Is(err, ErrServerRejected) {
		t.Fatalf("plain transport failure must not be reported as a race loss: %v", err)
	}
	if store.creates != 1 {
		t.Fatalf("expected one create attempt, got %d", store.creates)
	}
}

func TestSubmitBackToBackIsAccepted(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	store := &fakeStore{
		booked: []schedule.Interval{{
			Start: schedule.AtMinute(day, 11*60),
			End:   schedule.AtMinute(day, 12*60),
		}},
	}
	orch := NewOrchestrator(store, schedule.DefaultBusinessHours())

	// 10:00-11:00 ends exactly when the existing booking starts.
	if _, err := orch.Submit(context.Background(), "user-1", candidate()); err != nil {
		t.Fatalf("back-to-back submission rejected: %v", err)
	}
}
