package models

import "time"

// RoomType categorises rooms for assignment heuristics.
type RoomType string

const (
	RoomTypeClassroom RoomType = "Classroom"
	RoomTypeLab       RoomType = "Lab"
	RoomTypeHall      RoomType = "Hall"
	RoomTypeSeminar   RoomType = "Seminar"
)

// Room represents a physical teaching space.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Type      RoomType  `db:"type" json:"type"`
	Available bool      `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Type        RoomType
	MinCapacity int
	Available   *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
