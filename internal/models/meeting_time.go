package models

import "time"

// Weekdays usable by the search engine, in grid order. Saturday slots may
// exist in the catalog but are never offered to the scheduler.
var TeachingDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// MeetingTime is one cell of the fixed weekly slot grid. Start and End are
// wall-clock values formatted as "HH:MM".
type MeetingTime struct {
	ID           string    `db:"id" json:"id"`
	PID          string    `db:"pid" json:"pid"`
	Day          string    `db:"day" json:"day"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	IsLunchBreak bool      `db:"is_lunch_break" json:"is_lunch_break"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MeetingTimeFilter captures filtering options for listing meeting times.
type MeetingTimeFilter struct {
	Day          string
	IsLunchBreak *bool
	Page         int
	PageSize     int
}
