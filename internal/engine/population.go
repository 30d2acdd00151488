package engine

type slotKey struct {
	day   string
	start int
}

func (e *Engine) initialPopulation() []Individual {
	population := make([]Individual, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		population = append(population, e.newIndividual())
	}
	return population
}

// newIndividual builds one candidate timetable in catalog order, keeping a
// per-(day,start) claimed-room set and avoiding instructor/section overlaps
// with sessions placed earlier in the same individual. Every choice degrades
// through fallbacks instead of failing; an exhausted chain leaves the field
// unset for repair and fitness to deal with.
func (e *Engine) newIndividual() Individual {
	ind := make(Individual, len(e.sessions))
	copy(ind, e.sessions)
	claimed := make(map[slotKey]map[string]bool)

	for i := range ind {
		s := &ind[i]
		course := e.courseByID[s.CourseID]

		s.Instructor = e.pickInstructor(course)
		s.SlotID = e.pickSlot(ind, i, course)
		s.RoomID = e.pickRoom(s, course, claimed)
	}
	return ind
}

func (e *Engine) pickInstructor(course Course) string {
	if len(course.Instructors) > 0 {
		return course.Instructors[e.rng.Intn(len(course.Instructors))]
	}
	if len(e.snap.Instructors) > 0 {
		return e.snap.Instructors[e.rng.Intn(len(e.snap.Instructors))].ID
	}
	return ""
}

// pickSlot chooses among suitable slots that do not overlap any earlier
// session in ind sharing this session's instructor or section, falling back
// to any suitable slot, then any grid slot.
func (e *Engine) pickSlot(ind Individual, idx int, course Course) string {
	suitable := e.slotsForCourse[course.ID]
	free := make([]Slot, 0, len(suitable))
	for _, slot := range suitable {
		if !e.overlapsEarlier(ind, idx, slot) {
			free = append(free, slot)
		}
	}
	switch {
	case len(free) > 0:
		return free[e.rng.Intn(len(free))].ID
	case len(suitable) > 0:
		return suitable[e.rng.Intn(len(suitable))].ID
	case len(e.searchSlots) > 0:
		return e.searchSlots[e.rng.Intn(len(e.searchSlots))].ID
	default:
		return ""
	}
}

func (e *Engine) overlapsEarlier(ind Individual, idx int, slot Slot) bool {
	cur := ind[idx]
	curEnd := spanEnd(slot.Start, cur.Duration)
	for j := 0; j < idx; j++ {
		prev := ind[j]
		if prev.SlotID == "" {
			continue
		}
		sameActor := (cur.Instructor != "" && prev.Instructor == cur.Instructor) ||
			prev.SectionID == cur.SectionID
		if !sameActor {
			continue
		}
		prevSlot := e.slotByID[prev.SlotID]
		if prevSlot.Day != slot.Day {
			continue
		}
		if rangesOverlap(slot.Start, curEnd, prevSlot.Start, spanEnd(prevSlot.Start, prev.Duration)) {
			return true
		}
	}
	return false
}

// pickRoom prefers the section's pre-assigned room when it is still unclaimed
// at the chosen slot's (day,start) key, then course-suitable unclaimed rooms,
// then any unclaimed room. Claims only apply within the individual being
// built.
func (e *Engine) pickRoom(s *Session, course Course, claimed map[slotKey]map[string]bool) string {
	var key slotKey
	haveKey := false
	if s.SlotID != "" {
		slot := e.slotByID[s.SlotID]
		key = slotKey{day: slot.Day, start: slot.Start}
		haveKey = true
		if claimed[key] == nil {
			claimed[key] = make(map[string]bool)
		}
	}
	claim := func(roomID string) string {
		if haveKey {
			claimed[key][roomID] = true
		}
		return roomID
	}

	sec := e.sectionByID[s.SectionID]
	if sec != nil && sec.RoomID != "" && haveKey && !claimed[key][sec.RoomID] {
		return claim(sec.RoomID)
	}

	candidates := e.roomCandidates(course)
	open := make([]Room, 0, len(candidates))
	for _, r := range candidates {
		if haveKey && !claimed[key][r.ID] {
			open = append(open, r)
		}
	}
	if len(open) > 0 {
		return claim(open[e.rng.Intn(len(open))].ID)
	}
	open = open[:0]
	for _, r := range e.snap.Rooms {
		if haveKey && !claimed[key][r.ID] {
			open = append(open, r)
		}
	}
	if len(open) > 0 {
		return claim(open[e.rng.Intn(len(open))].ID)
	}
	return ""
}

// roomCandidates are rooms structurally suitable for a course: lab rooms for
// lab courses, otherwise anything with capacity for the course's enrollment
// cap.
func (e *Engine) roomCandidates(course Course) []Room {
	out := make([]Room, 0, len(e.snap.Rooms))
	for _, r := range e.snap.Rooms {
		if course.IsLab {
			if r.IsLab {
				out = append(out, r)
			}
			continue
		}
		if r.Capacity >= course.MaxStudents {
			out = append(out, r)
		}
	}
	return out
}

// selectPool runs tournament selection: for every population slot, sample up
// to TournamentSize distinct individuals and keep a copy of the fittest.
func (e *Engine) selectPool(population []Individual, fits []float64) []Individual {
	k := e.cfg.TournamentSize
	if k > len(population) {
		k = len(population)
	}
	pool := make([]Individual, 0, len(population))
	for range population {
		sample := e.rng.Perm(len(population))[:k]
		winner := sample[0]
		for _, idx := range sample[1:] {
			if fits[idx] > fits[winner] {
				winner = idx
			}
		}
		pool = append(pool, population[winner].Clone())
	}
	return pool
}

// crossover performs single-point crossover at a cut in [1,len-1]. Parents of
// unequal or sub-2 length are returned as untouched clones.
func (e *Engine) crossover(p1, p2 Individual) (Individual, Individual) {
	if len(p1) != len(p2) || len(p1) < 2 {
		return p1.Clone(), p2.Clone()
	}
	cut := 1 + e.rng.Intn(len(p1)-1)
	c1 := make(Individual, len(p1))
	c2 := make(Individual, len(p1))
	copy(c1, p1[:cut])
	copy(c1[cut:], p2[cut:])
	copy(c2, p2[:cut])
	copy(c2[cut:], p1[cut:])
	return c1, c2
}

// mutate re-picks either the instructor or the meeting time of each session
// independently at the mutation rate. Rooms are fixed per section and never
// mutated directly.
func (e *Engine) mutate(ind Individual) {
	for i := range ind {
		if e.rng.Float64() >= e.cfg.MutationRate {
			continue
		}
		s := &ind[i]
		course := e.courseByID[s.CourseID]
		if e.rng.Intn(2) == 0 {
			if id := e.pickInstructor(course); id != "" {
				s.Instructor = id
			}
			continue
		}
		suitable := e.slotsForCourse[course.ID]
		if len(suitable) == 0 {
			suitable = e.searchSlots
		}
		if len(suitable) > 0 {
			s.SlotID = suitable[e.rng.Intn(len(suitable))].ID
		}
	}
}

// repair fills any unset field with the construction fallback chains. Unlike
// construction it is greedy by default; ConflictAwareRepair restores the
// earlier-session overlap filter at extra cost. Fully assigned sessions are
// never altered, so repair is a fixed point.
func (e *Engine) repair(ind Individual) {
	for i := range ind {
		s := &ind[i]
		course := e.courseByID[s.CourseID]

		if s.Instructor == "" {
			s.Instructor = e.pickInstructor(course)
		}
		if s.SlotID == "" {
			if e.cfg.ConflictAwareRepair {
				s.SlotID = e.pickSlot(ind, i, course)
			} else {
				suitable := e.slotsForCourse[course.ID]
				if len(suitable) == 0 {
					suitable = e.searchSlots
				}
				if len(suitable) > 0 {
					s.SlotID = suitable[e.rng.Intn(len(suitable))].ID
				}
			}
		}
		if s.RoomID == "" {
			sec := e.sectionByID[s.SectionID]
			if sec != nil && sec.RoomID != "" {
				s.RoomID = sec.RoomID
				continue
			}
			candidates := e.roomCandidates(course)
			if len(candidates) == 0 {
				candidates = e.snap.Rooms
			}
			if len(candidates) > 0 {
				s.RoomID = candidates[e.rng.Intn(len(candidates))].ID
			}
		}
	}
}
