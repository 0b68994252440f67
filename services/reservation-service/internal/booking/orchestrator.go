package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
)

// ErrAlreadyBooked is returned by a Store when the persistence layer's
// own overlap constraint rejects a create.
var ErrAlreadyBooked = errors.New("time range already booked")

// ErrServerRejected marks a conflict the server discovered after local
// validation had already passed: the race window between re-fetch and
// commit closed on someone else's reservation. Callers should prompt
// the user to refresh availability and pick again; the submission is
// never retried automatically.
var ErrServerRejected = errors.New("reservation rejected by the server, availability changed")

// IntervalSource yields the booked intervals of one room for one day.
type IntervalSource interface {
	BookedIntervals(ctx context.Context, roomID string, day time.Time) ([]schedule.Interval, error)
}

// Store is the persistence collaborator behind reservation submission.
type Store interface {
	IntervalSource
	CreateReservation(ctx context.Context, userID string, req schedule.Request) (Created, error)
}

type Created struct {
	ID     string
	RoomID string
	Start  time.Time
	End    time.Time
}

// Orchestrator owns the submission sequence: fresh fetch, validation,
// one create attempt. Client-side validation is advisory; the store's
// constraint remains the safety boundary for double bookings.
type Orchestrator struct {
	store Store
	hours schedule.BusinessHours
}

func NewOrchestrator(store Store, hours schedule.BusinessHours) *Orchestrator {
	return &Orchestrator{store: store, hours: hours}
}

// Submit re-fetches the room's booked intervals, validates the candidate
// against the fresh set, and creates the reservation. At most one create
// attempt is made. Rejections come back as *schedule.ValidationError;
// a store-side conflict after validation passed comes back as
// ErrServerRejected; anything else is a transport failure, surfaced
// as-is with no state change.
func (o *Orchestrator) Submit(ctx context.Context, userID string, c schedule.Candidate) (Created, error) {
	day, dateErr := schedule.ParseDate(c.Date)
	if c.RoomID == "" || dateErr != nil {
		// Let the validator produce the canonical rejection.
		_, verr := schedule.Validate(c, o.hours, nil)
		if verr != nil {
			return Created{}, verr
		}
		return Created{}, fmt.Errorf("invalid candidate")
	}

	booked, err := o.store.BookedIntervals(ctx, c.RoomID, day)
	if err != nil {
		return Created{}, fmt.Errorf("fetch booked intervals: %w", err)
	}

	req, verr := schedule.Validate(c, o.hours, booked)
	if verr != nil {
		return Created{}, verr
	}

	created, err := o.store.CreateReservation(ctx, userID, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyBooked) {
			return Created{}, ErrServerRejected
		}
		return Created{}, fmt.Errorf("create reservation: %w", err)
	}
	return created, nil
}
