package model

type Room struct {
	ID       string
	Name     string
	Capacity int
}
