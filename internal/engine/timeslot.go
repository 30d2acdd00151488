package engine

import (
	"fmt"
	"sort"
)

// Clock values are minutes since midnight. Duration arithmetic wraps at
// midnight so every derived end time stays representable; the 09:00-19:00 slot
// grid never wraps in practice.
const (
	minutesPerDay  = 24 * 60
	lunchStart     = 13 * 60        // 13:00
	lunchEnd       = 13*60 + 45     // 13:45
	lastSessionEnd = 17 * 60        // multi-hour sessions must end by 17:00
	noonStart      = 12 * 60        // labs avoid the slot right before lunch
	postLunchStart = lunchEnd       // slots at or after 13:45
)

var dayOrder = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
}

// Slot is one cell of the weekly meeting-time grid.
type Slot struct {
	ID    string
	Day   string
	Start int
	End   int
	Lunch bool
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(m int) string {
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// spanEnd is the single authoritative end-time computation for a session of
// the given duration in hours.
func spanEnd(start, hours int) int {
	return (start + hours*60) % minutesPerDay
}

func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func spansLunch(start, end int) bool {
	return start < lunchEnd && end > lunchStart
}

// sortSlots orders a slot list by weekday, then start time, then ID, so that
// positional choices depend only on the RNG.
func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if dayOrder[a.Day] != dayOrder[b.Day] {
			return dayOrder[a.Day] < dayOrder[b.Day]
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
}

// suitableSlots filters the search grid down to slots structurally usable by
// the course: labs never start at noon, and sessions longer than one hour must
// end by 17:00. An empty result means the caller falls back to the full grid.
func suitableSlots(c Course, slots []Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if c.IsLab && s.Start == noonStart {
			continue
		}
		if c.Duration > 1 && spanEnd(s.Start, c.Duration) > lastSessionEnd {
			continue
		}
		out = append(out, s)
	}
	return out
}
