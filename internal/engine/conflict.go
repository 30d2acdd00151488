package engine

// PlacedSession is a committed timetable entry in the form the ad hoc
// conflict checker consumes. Display fields ride along so callers can render
// conflicts without another catalog lookup.
type PlacedSession struct {
	EntryID        string
	Day            string
	Start          int
	End            int
	Duration       int
	InstructorID   string
	InstructorName string
	RoomID         string
	RoomNumber     string
	SectionID      string
	SectionCode    string
	CourseName     string
}

// ConflictType tags which shared resource a conflicting entry clashes on.
type ConflictType string

const (
	ConflictInstructor ConflictType = "instructor"
	ConflictRoom       ConflictType = "room"
	ConflictSection    ConflictType = "section"
)

// Conflict describes one committed entry that collides with a proposed move.
type Conflict struct {
	Type       ConflictType `json:"type"`
	Day        string       `json:"day"`
	Time       string       `json:"time"`
	Section    string       `json:"section"`
	Course     string       `json:"course"`
	Room       string       `json:"room"`
	Instructor string       `json:"instructor"`
}

// MoveRequest is a proposed single-session move: the target day and start
// time plus the moving session's resources. ExcludeEntryID drops the
// session's own committed entry from the scan.
type MoveRequest struct {
	Day            string
	Start          int
	InstructorID   string
	RoomID         string
	SectionID      string
	ExcludeEntryID string
}

// CheckSlotConflicts validates an ad hoc move against a committed timetable,
// outside the search loop. A committed entry conflicts when one of the hourly
// starts it occupies equals the proposed start on the same day and it shares
// the instructor, room, or section; each conflicting entry is tagged with the
// highest-priority shared dimension only.
func CheckSlotConflicts(entries []PlacedSession, req MoveRequest) []Conflict {
	conflicts := []Conflict{}
	for _, entry := range entries {
		if entry.EntryID == req.ExcludeEntryID || entry.Day != req.Day {
			continue
		}
		duration := entry.Duration
		if duration < 1 {
			duration = 1
		}
		occupied := false
		for offset := 0; offset < duration; offset++ {
			if (entry.Start+offset*60)%minutesPerDay == req.Start {
				occupied = true
				break
			}
		}
		if !occupied {
			continue
		}

		var kind ConflictType
		switch {
		case entry.InstructorID != "" && entry.InstructorID == req.InstructorID:
			kind = ConflictInstructor
		case entry.RoomID != "" && entry.RoomID == req.RoomID:
			kind = ConflictRoom
		case entry.SectionID != "" && entry.SectionID == req.SectionID:
			kind = ConflictSection
		default:
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:       kind,
			Day:        entry.Day,
			Time:       FormatClock(entry.Start) + "-" + FormatClock(entry.End),
			Section:    entry.SectionCode,
			Course:     entry.CourseName,
			Room:       entry.RoomNumber,
			Instructor: entry.InstructorName,
		})
	}
	return conflicts
}
