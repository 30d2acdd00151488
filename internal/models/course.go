package models

import "time"

// CourseType distinguishes delivery formats; labs carry extra placement rules.
type CourseType string

const (
	CourseTypeTheory    CourseType = "Theory"
	CourseTypeLab       CourseType = "Lab"
	CourseTypePractical CourseType = "Practical"
)

// Course describes a unit of teaching demand. WeeklySessions is the number of
// separate sessions each enrolled section needs per week; Duration is the
// length of a single session in whole hours.
type Course struct {
	ID             string     `db:"id" json:"id"`
	Code           string     `db:"code" json:"code"`
	Name           string     `db:"name" json:"name"`
	Type           CourseType `db:"type" json:"type"`
	Credits        int        `db:"credits" json:"credits"`
	MaxStudents    int        `db:"max_students" json:"max_students"`
	Duration       int        `db:"duration" json:"duration"`
	Year           int        `db:"year" json:"year"`
	Semester       int        `db:"semester" json:"semester"`
	WeeklySessions int        `db:"weekly_sessions" json:"weekly_sessions"`
	DepartmentID   *string    `db:"department_id" json:"department_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`

	// InstructorIDs is the eligible-instructor set, loaded from the
	// course_instructors join table.
	InstructorIDs []string `db:"-" json:"instructor_ids,omitempty"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	DepartmentID string
	Year         int
	Semester     int
	Type         CourseType
	Search       string
	Page         int
	PageSize     int
}
