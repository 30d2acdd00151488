package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus tracks asynchronous generation runs.
type TimetableStatus string

const (
	TimetableStatusPending  TimetableStatus = "PENDING"
	TimetableStatusComplete TimetableStatus = "COMPLETE"
	TimetableStatusFailed   TimetableStatus = "FAILED"
)

// Timetable is a persisted generation result: the best individual found by the
// search plus its score and per-generation fitness trace.
type Timetable struct {
	ID                 string          `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	DepartmentID       string          `db:"department_id" json:"department_id"`
	Year               int             `db:"year" json:"year"`
	Semester           int             `db:"semester" json:"semester"`
	Fitness            float64         `db:"fitness" json:"fitness"`
	FitnessProgression types.JSONText  `db:"fitness_progression" json:"fitness_progression"`
	Status             TimetableStatus `db:"status" json:"status"`
	StopReason         string          `db:"stop_reason" json:"stop_reason"`
	IsActive           bool            `db:"is_active" json:"is_active"`
	CreatedBy          string          `db:"created_by" json:"created_by"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableEntry is one scheduled session inside a timetable. Assignment
// fields are nullable: the search may return partially assigned sessions.
type TimetableEntry struct {
	ID            string    `db:"id" json:"id"`
	TimetableID   string    `db:"timetable_id" json:"timetable_id"`
	SessionKey    string    `db:"session_key" json:"session_key"`
	CourseID      string    `db:"course_id" json:"course_id"`
	SectionID     string    `db:"section_id" json:"section_id"`
	Duration      int       `db:"duration" json:"duration"`
	InstructorID  *string   `db:"instructor_id" json:"instructor_id,omitempty"`
	RoomID        *string   `db:"room_id" json:"room_id,omitempty"`
	MeetingTimeID *string   `db:"meeting_time_id" json:"meeting_time_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntryDetail joins an entry with catalog display fields for
// rendering and export.
type TimetableEntryDetail struct {
	TimetableEntry
	CourseCode     string     `db:"course_code" json:"course_code"`
	CourseName     string     `db:"course_name" json:"course_name"`
	CourseType     CourseType `db:"course_type" json:"course_type"`
	SectionCode    string     `db:"section_code" json:"section_code"`
	InstructorName *string    `db:"instructor_name" json:"instructor_name,omitempty"`
	RoomNumber     *string    `db:"room_number" json:"room_number,omitempty"`
	Day            *string    `db:"day" json:"day,omitempty"`
	StartTime      *string    `db:"start_time" json:"start_time,omitempty"`
	EndTime        *string    `db:"end_time" json:"end_time,omitempty"`
}

// TimetableFilter captures filtering options for listing timetables.
type TimetableFilter struct {
	DepartmentID string
	Year         int
	Semester     int
	IsActive     *bool
	Page         int
	PageSize     int
}
