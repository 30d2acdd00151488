package engine

import "math"

// evaluate maps an individual to a fitness score in [0,100], higher is
// better. Hard violations (conflicts, unassigned sessions, missed weekly
// counts) dominate via their weights; soft violations (room type mismatch,
// uneven day spread, lunch adjacency, unused afternoons) nudge.
func (e *Engine) evaluate(ind Individual) float64 {
	n := len(ind)
	if n == 0 {
		return 0
	}

	var (
		unassigned int
		soft       int
		lunch      int
	)
	assigned := make([]int, 0, n)

	for i, s := range ind {
		course := e.courseByID[s.CourseID]
		if !s.Assigned() {
			if course.IsLab {
				unassigned += 50
			} else {
				unassigned += 40
			}
		} else {
			assigned = append(assigned, i)
			if course.IsLab && !e.roomByID[s.RoomID].IsLab {
				soft += 5
			}
		}
		if s.SlotID != "" {
			slot := e.slotByID[s.SlotID]
			end := spanEnd(slot.Start, s.Duration)
			if spansLunch(slot.Start, end) {
				lunch += 100
			}
			if end == lunchStart {
				lunch += 100
			}
		}
	}

	conflicts := 0
	for i := 0; i < len(assigned); i++ {
		for j := i + 1; j < len(assigned); j++ {
			conflicts += e.pairConflicts(ind[assigned[i]], ind[assigned[j]])
		}
	}

	distribution := e.distributionPenalty(ind, assigned)

	postLunch := 0
	if e.hasPostLunch {
		used := false
		for _, i := range assigned {
			if e.slotByID[ind[i].SlotID].Start >= postLunchStart {
				used = true
				break
			}
		}
		if !used {
			postLunch = 50
		}
	}

	cpw := 0
	counts := make(map[string]int, len(e.requiredPerCourse))
	for _, i := range assigned {
		counts[ind[i].CourseID]++
	}
	for id, required := range e.requiredPerCourse {
		if missing := required - counts[id]; missing > 0 {
			cpw += missing * 100
		}
	}

	total := float64(conflicts*1000+unassigned*50+soft*10+postLunch+cpw+lunch) + distribution
	maxPossible := float64(n*(n-1)/2*1000 + n*50 + n*10 + n*5 + 50 + n*200)
	if maxPossible == 0 {
		if total == 0 {
			return 100
		}
		return 0
	}
	return math.Max(0, (1-total/maxPossible)*100)
}

// pairConflicts counts overlapping-pair violations per dimension: one each
// for a shared instructor, room, or section, so a single clashing pair can
// contribute up to three.
func (e *Engine) pairConflicts(a, b Session) int {
	slotA, slotB := e.slotByID[a.SlotID], e.slotByID[b.SlotID]
	if slotA.Day != slotB.Day {
		return 0
	}
	if !rangesOverlap(slotA.Start, spanEnd(slotA.Start, a.Duration), slotB.Start, spanEnd(slotB.Start, b.Duration)) {
		return 0
	}
	c := 0
	if a.Instructor == b.Instructor {
		c++
	}
	if a.RoomID == b.RoomID {
		c++
	}
	if a.SectionID == b.SectionID {
		c++
	}
	return c
}

// distributionPenalty scores unevenness of the weekday spread as the excess
// of the observed day-count standard deviation over the most even split
// achievable for that many sessions, times ten. A perfectly spread timetable
// therefore scores zero even when the session count does not divide by five.
func (e *Engine) distributionPenalty(ind Individual, assigned []int) float64 {
	if len(assigned) == 0 {
		return 0
	}
	counts := make([]int, len(dayOrder))
	for _, i := range assigned {
		counts[dayOrder[e.slotByID[ind[i].SlotID].Day]]++
	}
	excess := stdDev(counts) - evenSpreadStdDev(len(assigned), len(counts))
	if excess <= 0 {
		return 0
	}
	return excess * 10
}

func stdDev(counts []int) float64 {
	mean := 0.0
	for _, c := range counts {
		mean += float64(c)
	}
	mean /= float64(len(counts))
	variance := 0.0
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(counts)))
}

// evenSpreadStdDev is the standard deviation of the most even partition of n
// sessions over the given number of days.
func evenSpreadStdDev(n, days int) float64 {
	counts := make([]int, days)
	for i := 0; i < days; i++ {
		counts[i] = n / days
	}
	for i := 0; i < n%days; i++ {
		counts[i]++
	}
	return stdDev(counts)
}
