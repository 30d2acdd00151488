package dto

// GenerateTimetableRequest triggers a generation run over the catalog slice
// matching the filters. Search knobs are optional; zero values fall back to
// the configured defaults.
type GenerateTimetableRequest struct {
	Name           string   `json:"name" validate:"required,min=3,max=120"`
	DepartmentIDs  []string `json:"departmentIds" validate:"required,min=1,dive,required"`
	Years          []int    `json:"years" validate:"required,min=1,dive,min=1,max=6"`
	Semesters      []int    `json:"semesters" validate:"required,min=1,dive,min=1,max=2"`
	PopulationSize int      `json:"populationSize" validate:"omitempty,min=2,max=500"`
	MutationRate   float64  `json:"mutationRate" validate:"omitempty,gt=0,lte=1"`
	EliteRate      float64  `json:"eliteRate" validate:"omitempty,gt=0,lte=1"`
	Generations    int      `json:"generations" validate:"omitempty,min=1,max=10000"`
	Async          bool     `json:"async"`
}

// GenerateTimetableResponse reports the created timetable. For async runs the
// fitness fields arrive later via the timetable detail endpoint.
type GenerateTimetableResponse struct {
	TimetableID string  `json:"timetableId"`
	Status      string  `json:"status"`
	Fitness     float64 `json:"fitness"`
	StopReason  string  `json:"stopReason,omitempty"`
	Generations int     `json:"generations"`
	Sessions    int     `json:"sessions"`
	Unassigned  int     `json:"unassigned"`
}

// TimetableEntryResponse is one scheduled session with display fields.
type TimetableEntryResponse struct {
	ID         string  `json:"id"`
	SessionKey string  `json:"sessionKey"`
	CourseCode string  `json:"courseCode"`
	CourseName string  `json:"courseName"`
	CourseType string  `json:"courseType"`
	Section    string  `json:"section"`
	Instructor *string `json:"instructor,omitempty"`
	Room       *string `json:"room,omitempty"`
	Day        *string `json:"day,omitempty"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`
	Duration   int     `json:"duration"`
}

// TimetableResponse is a timetable header with optional entries.
type TimetableResponse struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Department string                   `json:"departmentId"`
	Year       int                      `json:"year"`
	Semester   int                      `json:"semester"`
	Fitness    float64                  `json:"fitness"`
	Status     string                   `json:"status"`
	StopReason string                   `json:"stopReason,omitempty"`
	IsActive   bool                     `json:"isActive"`
	CreatedAt  string                   `json:"createdAt"`
	Entries    []TimetableEntryResponse `json:"entries,omitempty"`
}

// FitnessProgressionResponse exposes the per-generation best-score trace.
type FitnessProgressionResponse struct {
	TimetableID string    `json:"timetableId"`
	Fitness     float64   `json:"fitness"`
	Progression []float64 `json:"progression"`
}

// CheckMoveRequest validates relocating one committed session to a new slot.
type CheckMoveRequest struct {
	Day            string `json:"day" validate:"required"`
	StartTime      string `json:"startTime" validate:"required"`
	InstructorID   string `json:"instructorId" validate:"required"`
	RoomID         string `json:"roomId" validate:"required"`
	SectionID      string `json:"sectionId" validate:"required"`
	ExcludeEntryID string `json:"excludeEntryId"`
}

// MoveConflictResponse is one clash found by the move check.
type MoveConflictResponse struct {
	Type       string `json:"type"`
	Day        string `json:"day"`
	Time       string `json:"time"`
	Section    string `json:"section"`
	Course     string `json:"course"`
	Room       string `json:"room"`
	Instructor string `json:"instructor"`
}

// CheckMoveResponse reports whether a move is safe and why not.
type CheckMoveResponse struct {
	HasConflicts bool                   `json:"hasConflicts"`
	Conflicts    []MoveConflictResponse `json:"conflicts"`
}
