package models

import "time"

// Instructor represents a teaching staff record.
type Instructor struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Available bool      `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorFilter captures filtering options for listing instructors.
type InstructorFilter struct {
	Search    string
	Available *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
