package engine

import (
	"sort"

	"go.uber.org/zap"
)

// RoomAssignment is one section-to-room binding produced by the
// pre-assignment heuristic. RoomID is empty when no room qualified.
type RoomAssignment struct {
	SectionID string
	RoomID    string
}

// RoomPlan binds at most one room to each section before the search begins
// and records the binding on the snapshot so individuals inherit it. Larger
// sections pick first; sections with lab courses prefer the largest unclaimed
// lab room with enough capacity, falling back to any unclaimed room that
// fits. The caller persists the returned plan before Evolve so the bindings
// are stable for external consumers.
func (e *Engine) RoomPlan() []RoomAssignment {
	rooms := make([]Room, len(e.snap.Rooms))
	copy(rooms, e.snap.Rooms)
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Capacity != rooms[j].Capacity {
			return rooms[i].Capacity > rooms[j].Capacity
		}
		if rooms[i].Number != rooms[j].Number {
			return rooms[i].Number < rooms[j].Number
		}
		return rooms[i].ID < rooms[j].ID
	})

	order := make([]*Section, 0, len(e.snap.Sections))
	for i := range e.snap.Sections {
		order = append(order, &e.snap.Sections[i])
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Students != order[j].Students {
			return order[i].Students > order[j].Students
		}
		if order[i].Code != order[j].Code {
			return order[i].Code < order[j].Code
		}
		return order[i].ID < order[j].ID
	})

	claimed := make(map[string]bool, len(rooms))
	plan := make([]RoomAssignment, 0, len(order))
	for _, sec := range order {
		chosen := e.pickSectionRoom(sec, rooms, claimed)
		if chosen != "" {
			claimed[chosen] = true
			sec.RoomID = chosen
			e.log.Debug("section room assigned",
				zap.String("section", sec.Code),
				zap.String("room", e.roomByID[chosen].Number),
				zap.Int("students", sec.Students))
		} else {
			sec.RoomID = ""
			e.log.Warn("no suitable room for section",
				zap.String("section", sec.Code),
				zap.Int("students", sec.Students))
		}
		plan = append(plan, RoomAssignment{SectionID: sec.ID, RoomID: chosen})
	}
	return plan
}

func (e *Engine) pickSectionRoom(sec *Section, rooms []Room, claimed map[string]bool) string {
	hasLab := false
	for _, courseID := range sec.Courses {
		if c, ok := e.courseByID[courseID]; ok && c.IsLab {
			hasLab = true
			break
		}
	}

	// rooms arrive capacity-descending, so the first match is the largest.
	if hasLab {
		for _, r := range rooms {
			if !claimed[r.ID] && r.IsLab && r.Capacity >= sec.Students {
				return r.ID
			}
		}
	}
	for _, r := range rooms {
		if !claimed[r.ID] && r.Capacity >= sec.Students {
			return r.ID
		}
	}
	return ""
}
