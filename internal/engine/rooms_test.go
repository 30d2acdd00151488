package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomPlanLargestSectionsPickFirst(t *testing.T) {
	snap := Snapshot{
		Rooms: []Room{
			{ID: "r1", Number: "101", Capacity: 30},
			{ID: "r2", Number: "102", Capacity: 80},
			{ID: "r3", Number: "103", Capacity: 50},
		},
		Courses: []Course{{ID: "c1", Code: "CS101"}},
		Sections: []Section{
			{ID: "s1", Code: "A", Students: 45, Courses: []string{"c1"}},
			{ID: "s2", Code: "B", Students: 70, Courses: []string{"c1"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	plan := e.RoomPlan()

	byarg := map[string]string{}
	for _, p := range plan {
		byarg[p.SectionID] = p.RoomID
	}
	// the 70-student section claims the 80-seat room before the
	// 45-student section gets the next largest
	assert.Equal(t, "r2", byarg["s2"])
	assert.Equal(t, "r3", byarg["s1"])
}

func TestRoomPlanPrefersLabRoomsForLabSections(t *testing.T) {
	snap := Snapshot{
		Rooms: []Room{
			{ID: "r1", Number: "101", Capacity: 100},
			{ID: "lab1", Number: "L1", Capacity: 40, IsLab: true},
		},
		Courses: []Course{
			{ID: "c1", Code: "CS101"},
			{ID: "lab", Code: "CS210L", IsLab: true},
		},
		Sections: []Section{
			{ID: "s1", Code: "A", Students: 30, Courses: []string{"c1", "lab"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	plan := e.RoomPlan()

	require.Len(t, plan, 1)
	assert.Equal(t, "lab1", plan[0].RoomID)
}

func TestRoomPlanLabSectionFallsBackWhenNoLabFits(t *testing.T) {
	snap := Snapshot{
		Rooms: []Room{
			{ID: "r1", Number: "101", Capacity: 100},
			{ID: "lab1", Number: "L1", Capacity: 10, IsLab: true},
		},
		Courses: []Course{{ID: "lab", Code: "CS210L", IsLab: true}},
		Sections: []Section{
			{ID: "s1", Code: "A", Students: 30, Courses: []string{"lab"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	plan := e.RoomPlan()

	require.Len(t, plan, 1)
	assert.Equal(t, "r1", plan[0].RoomID)
}

func TestRoomPlanNeverDoubleClaims(t *testing.T) {
	snap := Snapshot{
		Rooms: []Room{
			{ID: "r1", Number: "101", Capacity: 60},
			{ID: "r2", Number: "102", Capacity: 60},
		},
		Courses: []Course{{ID: "c1", Code: "CS101"}},
		Sections: []Section{
			{ID: "s1", Code: "A", Students: 20, Courses: []string{"c1"}},
			{ID: "s2", Code: "B", Students: 20, Courses: []string{"c1"}},
			{ID: "s3", Code: "C", Students: 20, Courses: []string{"c1"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	plan := e.RoomPlan()

	claimed := map[string]bool{}
	unassigned := 0
	for _, p := range plan {
		if p.RoomID == "" {
			unassigned++
			continue
		}
		assert.False(t, claimed[p.RoomID], "room %s claimed twice", p.RoomID)
		claimed[p.RoomID] = true
	}
	assert.Equal(t, 1, unassigned)
}

func TestRoomPlanLeavesOversizedSectionsRoomless(t *testing.T) {
	snap := Snapshot{
		Rooms:    []Room{{ID: "r1", Number: "101", Capacity: 20}},
		Courses:  []Course{{ID: "c1", Code: "CS101"}},
		Sections: []Section{{ID: "s1", Code: "A", Students: 90, Courses: []string{"c1"}}},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	plan := e.RoomPlan()

	require.Len(t, plan, 1)
	assert.Empty(t, plan[0].RoomID)
}
