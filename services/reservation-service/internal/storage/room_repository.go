package storage

import (
	"context"

	"github.com/roomdesk/roomdesk/libs/db"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/model"
)

type RoomRepository struct {
	pool *db.Pool
}

func NewRoomRepository(pool *db.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func (r *RoomRepository) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, capacity
		FROM rooms
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rooms, nil
}

func (r *RoomRepository) Get(ctx context.Context, id string) (model.Room, error) {
	var room model.Room
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, capacity
		FROM rooms
		WHERE id = $1
	`, id).Scan(&room.ID, &room.Name, &room.Capacity)
	if err != nil {
		return model.Room{}, err
	}
	return room, nil
}
