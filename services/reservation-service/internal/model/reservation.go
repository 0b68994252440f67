package model

import "time"

type Reservation struct {
	ID        string
	RoomID    string
	RoomName  string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}
