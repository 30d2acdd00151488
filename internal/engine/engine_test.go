package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// weekGrid builds one slot per weekday per given start hour.
func weekGrid(hours ...int) []Slot {
	var slots []Slot
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		for _, h := range hours {
			slots = append(slots, hourSlot(fmt.Sprintf("%s-%02d", day, h), day, h))
		}
	}
	return slots
}

func fastConfig() Config {
	return Config{
		PopulationSize:  20,
		MutationRate:    0.1,
		EliteRate:       0.1,
		Generations:     60,
		StagnationLimit: 15,
	}
}

func newTestEngine(t *testing.T, snap Snapshot, cfg Config, seed int64) *Engine {
	t.Helper()
	return New(snap, cfg, rand.New(rand.NewSource(seed)), zap.NewNop())
}

func TestEvolveSingleSessionConverges(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1", Name: "Dr. Rao"}},
		Rooms:       []Room{{ID: "r1", Number: "101", Capacity: 40}},
		Slots:       []Slot{hourSlot("mon-14", "Monday", 14)},
		Courses: []Course{{
			ID: "c1", Code: "CS101", Name: "Algorithms",
			Duration: 1, WeeklySessions: 1, MaxStudents: 40,
			Instructors: []string{"i1"},
		}},
		Sections: []Section{{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1"}}},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)
	e.RoomPlan()

	res := e.Evolve(context.Background())

	assert.Equal(t, StopConverged, res.Reason)
	assert.Equal(t, 100.0, res.Fitness)
	require.Len(t, res.Best, 1)
	assert.True(t, res.Best.FullyAssigned())
	assert.Equal(t, "i1", res.Best[0].Instructor)
	assert.Equal(t, "r1", res.Best[0].RoomID)
	require.NotEmpty(t, res.Progression)
	assert.Equal(t, 100.0, res.Progression[len(res.Progression)-1])
}

func TestEvolveContendedResourcesTerminates(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1", Name: "Dr. Rao"}},
		Rooms:       []Room{{ID: "r1", Number: "101", Capacity: 60}},
		Slots:       []Slot{hourSlot("mon-09", "Monday", 9)},
		Courses: []Course{{
			ID: "c1", Code: "CS101", Name: "Algorithms",
			Duration: 1, WeeklySessions: 2, MaxStudents: 60,
			Instructors: []string{"i1"},
		}},
		Sections: []Section{
			{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1"}},
			{ID: "s2", Code: "B", Students: 30, Courses: []string{"c1"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 2)
	e.RoomPlan()

	res := e.Evolve(context.Background())

	assert.Less(t, res.Fitness, 100.0)
	assert.LessOrEqual(t, res.Generations, fastConfig().Generations)
	require.Len(t, res.Best, 4)
}

func TestEvolveWithoutRoomsStagnates(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1", Name: "Dr. Rao"}},
		Slots:       weekGrid(9, 10),
		Courses: []Course{{
			ID: "c1", Code: "CS101", Duration: 1, WeeklySessions: 1,
			MaxStudents: 40, Instructors: []string{"i1"},
		}},
		Sections: []Section{{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1"}}},
	}
	e := newTestEngine(t, snap, fastConfig(), 6)
	e.RoomPlan()

	res := e.Evolve(context.Background())

	assert.Contains(t, []StopReason{StopStagnated, StopExhausted}, res.Reason)
	assert.False(t, res.Best.FullyAssigned())
	assert.Less(t, res.Fitness, 100.0)
}

func TestEvolveEmptyCatalogShortCircuits(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1"}},
		Rooms:       []Room{{ID: "r1", Capacity: 40}},
		Slots:       weekGrid(9, 10, 11),
	}
	e := newTestEngine(t, snap, fastConfig(), 3)

	res := e.Evolve(context.Background())

	assert.Equal(t, StopEmpty, res.Reason)
	assert.Nil(t, res.Best)
	assert.Zero(t, res.Fitness)
	assert.Empty(t, res.Progression)
}

func TestEvolveLabSessionRespectsDurationBound(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1", Name: "Dr. Iyer"}},
		Rooms: []Room{
			{ID: "r1", Number: "L1", Capacity: 40, IsLab: true},
		},
		Slots: weekGrid(9, 10, 11, 12, 14, 15, 16),
		Courses: []Course{{
			ID: "c1", Code: "CS210L", Name: "Systems Lab", IsLab: true,
			Duration: 2, WeeklySessions: 1, MaxStudents: 40,
			Instructors: []string{"i1"},
		}},
		Sections: []Section{{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1"}}},
	}
	e := newTestEngine(t, snap, fastConfig(), 4)
	e.RoomPlan()

	res := e.Evolve(context.Background())

	require.Len(t, res.Best, 1)
	if res.Best.FullyAssigned() {
		slot := e.slotByID[res.Best[0].SlotID]
		assert.LessOrEqual(t, spanEnd(slot.Start, 2), lastSessionEnd)
		assert.NotEqual(t, noonStart, slot.Start)
	}
}

func TestEvolveCancelledContext(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1"}},
		Rooms:       []Room{{ID: "r1", Capacity: 40}},
		Slots:       weekGrid(9, 10),
		Courses: []Course{{
			ID: "c1", Code: "CS101", Duration: 1, WeeklySessions: 1,
			MaxStudents: 40, Instructors: []string{"i1"},
		}},
		Sections: []Section{{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1"}}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newTestEngine(t, snap, fastConfig(), 5)

	res := e.Evolve(ctx)

	assert.Equal(t, StopCancelled, res.Reason)
	assert.Zero(t, res.Generations)
}

func TestEvolveDeterministicForFixedSeed(t *testing.T) {
	snap := Snapshot{
		Instructors: []Instructor{{ID: "i1"}, {ID: "i2"}},
		Rooms:       []Room{{ID: "r1", Capacity: 60}, {ID: "r2", Capacity: 30}},
		Slots:       weekGrid(9, 10, 11, 14, 15),
		Courses: []Course{
			{ID: "c1", Code: "CS101", Duration: 1, WeeklySessions: 2, MaxStudents: 40, Instructors: []string{"i1"}},
			{ID: "c2", Code: "CS102", Duration: 1, WeeklySessions: 1, MaxStudents: 40, Instructors: []string{"i2"}},
		},
		Sections: []Section{{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1", "c2"}}},
	}

	run := func() Result {
		e := newTestEngine(t, snap, fastConfig(), 42)
		e.RoomPlan()
		return e.Evolve(context.Background())
	}
	first, second := run(), run()

	assert.Equal(t, first.Fitness, second.Fitness)
	assert.Equal(t, first.Progression, second.Progression)
	assert.Equal(t, first.Best, second.Best)
}

func TestConfigNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.normalize()

	assert.Equal(t, 50, cfg.PopulationSize)
	assert.Equal(t, 0.1, cfg.MutationRate)
	assert.Equal(t, 0.1, cfg.EliteRate)
	assert.Equal(t, 500, cfg.Generations)
	assert.Equal(t, 200, cfg.StagnationLimit)
	assert.Equal(t, 5, cfg.TournamentSize)
}
