package models

import "time"

// Section is a cohort of students following a shared set of courses. RoomID is
// assigned by the scheduler's room pre-assignment step and persisted so later
// runs and external consumers see a stable binding.
type Section struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Year         int       `db:"year" json:"year"`
	Semester     int       `db:"semester" json:"semester"`
	Students     int       `db:"students" json:"students"`
	RoomID       *string   `db:"room_id" json:"room_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// CourseIDs is loaded from the course_sections join table.
	CourseIDs []string `db:"-" json:"course_ids,omitempty"`
}

// SectionFilter captures filtering options for listing sections.
type SectionFilter struct {
	DepartmentIDs []string
	Years         []int
	Semesters     []int
	Page          int
	PageSize      int
}

// SectionRoomAssignment is one row of the batched section-to-room commit
// produced by the room pre-assignment heuristic.
type SectionRoomAssignment struct {
	SectionID string  `json:"section_id"`
	RoomID    *string `json:"room_id"`
}
