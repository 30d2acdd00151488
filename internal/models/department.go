package models

import "time"

// Department groups sections and courses.
type Department struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Code             string    `db:"code" json:"code"`
	HeadInstructorID *string   `db:"head_instructor_id" json:"head_instructor_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
