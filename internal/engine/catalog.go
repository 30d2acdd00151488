package engine

import (
	"fmt"
	"sort"
)

// Session is one required weekly occurrence of a course for a section. The
// three assignment fields start empty and are the only parts that mutate
// during the search.
type Session struct {
	Key        string
	CourseID   string
	SectionID  string
	Duration   int
	Instructor string
	RoomID     string
	SlotID     string
}

// Assigned reports whether instructor, room, and meeting time are all set.
func (s Session) Assigned() bool {
	return s.Instructor != "" && s.RoomID != "" && s.SlotID != ""
}

// Individual is one candidate timetable: an assignment state for every
// session in the catalog, in catalog order. Individuals never share session
// storage; Clone is the only way a new population member comes into being.
type Individual []Session

func (ind Individual) Clone() Individual {
	out := make(Individual, len(ind))
	copy(out, ind)
	return out
}

// FullyAssigned reports whether every session has all three fields set.
func (ind Individual) FullyAssigned() bool {
	for _, s := range ind {
		if !s.Assigned() {
			return false
		}
	}
	return true
}

// buildSessions expands section course requirements into the flat ordered
// session catalog shared by every individual. Sections and each section's
// courses are sorted by composite key first so genome positions are stable
// across runs with the same input.
func buildSessions(snap Snapshot, courseByID map[string]Course) []Session {
	sections := make([]Section, len(snap.Sections))
	copy(sections, snap.Sections)
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Code != sections[j].Code {
			return sections[i].Code < sections[j].Code
		}
		return sections[i].ID < sections[j].ID
	})

	var sessions []Session
	for _, sec := range sections {
		courseIDs := make([]string, 0, len(sec.Courses))
		for _, id := range sec.Courses {
			if _, ok := courseByID[id]; ok {
				courseIDs = append(courseIDs, id)
			}
		}
		sort.Slice(courseIDs, func(i, j int) bool {
			a, b := courseByID[courseIDs[i]], courseByID[courseIDs[j]]
			if a.Code != b.Code {
				return a.Code < b.Code
			}
			return a.ID < b.ID
		})

		for _, courseID := range courseIDs {
			course := courseByID[courseID]
			n := course.WeeklySessions
			if n < 1 {
				n = 1
			}
			duration := course.Duration
			if duration < 1 {
				duration = 1
			}
			for i := 0; i < n; i++ {
				sessions = append(sessions, Session{
					Key:       fmt.Sprintf("%s_%s_%d", sec.Code, course.Code, i),
					CourseID:  course.ID,
					SectionID: sec.ID,
					Duration:  duration,
				})
			}
		}
	}
	return sessions
}
