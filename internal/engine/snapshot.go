package engine

// Snapshot is the read-only catalog a run operates on. The service layer
// builds it from the persisted entities matching the run filters; the engine
// never touches storage itself.
type Snapshot struct {
	Instructors []Instructor
	Rooms       []Room
	Slots       []Slot
	Courses     []Course
	Sections    []Section
}

// Instructor is an available member of teaching staff.
type Instructor struct {
	ID   string
	Name string
}

// Room is an available teaching space.
type Room struct {
	ID       string
	Number   string
	Capacity int
	IsLab    bool
}

// Course carries the scheduling-relevant attributes of a course. Instructors
// holds the IDs of staff eligible to take it; MaxStudents bounds fallback
// room selection.
type Course struct {
	ID             string
	Code           string
	Name           string
	IsLab          bool
	Duration       int
	WeeklySessions int
	MaxStudents    int
	Instructors    []string
}

// Section is a student cohort. RoomID is empty until the room pre-assignment
// step binds one; Courses lists the course IDs the cohort must take this run.
type Section struct {
	ID       string
	Code     string
	Students int
	RoomID   string
	Courses  []string
}
