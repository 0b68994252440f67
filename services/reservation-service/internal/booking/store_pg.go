package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roomdesk/roomdesk/libs/db"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/model"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/outbox"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/storage"
)

// PGStore is the production Store: reservations in Postgres, created
// atomically with their outbox event.
type PGStore struct {
	pool       *db.Pool
	repo       *storage.ReservationRepository
	outboxRepo *outbox.Repository
}

func NewPGStore(pool *db.Pool, repo *storage.ReservationRepository, outboxRepo *outbox.Repository) *PGStore {
	return &PGStore{pool: pool, repo: repo, outboxRepo: outboxRepo}
}

func (s *PGStore) BookedIntervals(ctx context.Context, roomID string, day time.Time) ([]schedule.Interval, error) {
	bounds := schedule.DayBounds(day)
	reservations, err := s.repo.ListBookedIntervals(ctx, roomID, bounds.Start, bounds.End)
	if err != nil {
		return nil, err
	}
	intervals := make([]schedule.Interval, 0, len(reservations))
	for _, res := range reservations {
		intervals = append(intervals, schedule.Interval{Start: res.StartTime, End: res.EndTime})
	}
	return intervals, nil
}

func (s *PGStore) CreateReservation(ctx context.Context, userID string, req schedule.Request) (Created, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Created{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res := &model.Reservation{
		RoomID:    req.RoomID,
		UserID:    userID,
		StartTime: req.Interval.Start,
		EndTime:   req.Interval.End,
	}
	id, err := s.repo.Create(ctx, tx, res)
	if err != nil {
		if storage.IsConflict(err) {
			return Created{}, ErrAlreadyBooked
		}
		return Created{}, err
	}

	payload, err := json.Marshal(map[string]any{
		"reservation_id": id,
		"room_id":        req.RoomID,
		"user_id":        userID,
		"start_time":     schedule.FormatStamp(req.Interval.Start),
		"end_time":       schedule.FormatStamp(req.Interval.End),
	})
	if err != nil {
		return Created{}, fmt.Errorf("build event payload: %w", err)
	}
	if err := s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   id,
		EventType:     "reservation.created.v1",
		Payload:       payload,
	}); err != nil {
		return Created{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		if storage.IsConflict(err) {
			// Deferred exclusion constraints fire at commit time.
			return Created{}, ErrAlreadyBooked
		}
		return Created{}, err
	}
	return Created{ID: id, RoomID: req.RoomID, Start: req.Interval.Start, End: req.Interval.End}, nil
}

var _ Store = (*PGStore)(nil)
