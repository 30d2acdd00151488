package dto

// CreateInstructorRequest registers a teaching staff member.
type CreateInstructorRequest struct {
	Code      string `json:"code" validate:"required,min=2,max=20"`
	Name      string `json:"name" validate:"required,min=2,max=120"`
	Email     string `json:"email" validate:"required,email"`
	Available *bool  `json:"available"`
}

// CreateRoomRequest registers a teaching space.
type CreateRoomRequest struct {
	Number    string `json:"number" validate:"required,min=1,max=20"`
	Capacity  int    `json:"capacity" validate:"required,min=1,max=1000"`
	Type      string `json:"type" validate:"required,oneof=Classroom Lab Hall Seminar"`
	Available *bool  `json:"available"`
}

// CreateDepartmentRequest registers a department.
type CreateDepartmentRequest struct {
	Name             string  `json:"name" validate:"required,min=2,max=120"`
	Code             string  `json:"code" validate:"required,min=2,max=20"`
	HeadInstructorID *string `json:"headInstructorId"`
}

// CreateCourseRequest registers a course and its eligible instructors.
type CreateCourseRequest struct {
	Code           string   `json:"code" validate:"required,min=2,max=20"`
	Name           string   `json:"name" validate:"required,min=2,max=120"`
	Type           string   `json:"type" validate:"required,oneof=Theory Lab Practical"`
	Credits        int      `json:"credits" validate:"omitempty,min=1,max=10"`
	MaxStudents    int      `json:"maxStudents" validate:"omitempty,min=1,max=1000"`
	Duration       int      `json:"duration" validate:"omitempty,min=1,max=4"`
	Year           int      `json:"year" validate:"required,min=1,max=6"`
	Semester       int      `json:"semester" validate:"required,min=1,max=2"`
	WeeklySessions int      `json:"weeklySessions" validate:"omitempty,min=1,max=10"`
	DepartmentID   *string  `json:"departmentId"`
	InstructorIDs  []string `json:"instructorIds"`
}

// CreateSectionRequest registers a student cohort and its course set.
type CreateSectionRequest struct {
	Code         string   `json:"code" validate:"required,min=1,max=20"`
	DepartmentID string   `json:"departmentId" validate:"required"`
	Year         int      `json:"year" validate:"required,min=1,max=6"`
	Semester     int      `json:"semester" validate:"required,min=1,max=2"`
	Students     int      `json:"students" validate:"required,min=1,max=1000"`
	CourseIDs    []string `json:"courseIds"`
}

// CreateMeetingTimeRequest adds a slot to the weekly grid.
type CreateMeetingTimeRequest struct {
	PID          string `json:"pid" validate:"required,min=3,max=20"`
	Day          string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	IsLunchBreak bool   `json:"isLunchBreak"`
}

// ImportSummaryResponse reports the outcome of a CSV catalog import.
type ImportSummaryResponse struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
