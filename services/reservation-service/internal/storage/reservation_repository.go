package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/roomdesk/roomdesk/libs/db"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/model"
)

type ReservationRepository struct {
	pool *db.Pool
}

func NewReservationRepository(pool *db.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// ListBookedIntervals returns every reservation for a room that touches
// the [start, end) window, in chronological order. The SQL predicate is
// the half-open overlap check: start_time < end AND end_time > start.
func (r *ReservationRepository) ListBookedIntervals(ctx context.Context, roomID string, start, end time.Time) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room_id, user_id, start_time, end_time, created_at
		FROM reservations
		WHERE room_id = $1
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, roomID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.RoomID, &res.UserID, &res.StartTime, &res.EndTime, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reservations, nil
}

func (r *ReservationRepository) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO reservations (room_id, user_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, res.RoomID, res.UserID, res.StartTime, res.EndTime).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT res.id, res.room_id, rm.name, res.user_id, res.start_time, res.end_time, res.created_at
		FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		WHERE res.user_id = $1
		ORDER BY res.start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.RoomID, &res.RoomName, &res.UserID, &res.StartTime, &res.EndTime, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reservations, nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Reservation, error) {
	var res model.Reservation
	err := tx.QueryRow(ctx, `
		SELECT id, room_id, user_id, start_time, end_time, created_at
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&res.ID, &res.RoomID, &res.UserID, &res.StartTime, &res.EndTime, &res.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `
		DELETE FROM reservations
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsConflict reports whether err is the reservations table's overlap
// exclusion constraint firing (Postgres error 23P01). That constraint,
// not client-side validation, is the final word on double bookings.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
