package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSessionsExpandsWeeklyCounts(t *testing.T) {
	snap := Snapshot{
		Courses: []Course{
			{ID: "c1", Code: "CS101", WeeklySessions: 3, Duration: 1},
			{ID: "c2", Code: "CS102", WeeklySessions: 0, Duration: 2},
		},
		Sections: []Section{
			{ID: "s1", Code: "A", Courses: []string{"c1", "c2"}},
			{ID: "s2", Code: "B", Courses: []string{"c1"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	sessions := e.Sessions()

	// 3 + 1 for section A, 3 for section B; zero weekly counts round up
	require.Len(t, sessions, 7)
	keys := map[string]bool{}
	for _, s := range sessions {
		assert.False(t, keys[s.Key], "duplicate key %s", s.Key)
		keys[s.Key] = true
		assert.Empty(t, s.Instructor)
		assert.Empty(t, s.RoomID)
		assert.Empty(t, s.SlotID)
	}
	// duration defaults to the course's, minimum one hour
	assert.Equal(t, 2, sessions[3].Duration)
}

func TestBuildSessionsStableOrder(t *testing.T) {
	snap := Snapshot{
		Courses: []Course{
			{ID: "c2", Code: "CS102", WeeklySessions: 1},
			{ID: "c1", Code: "CS101", WeeklySessions: 1},
		},
		Sections: []Section{
			{ID: "s2", Code: "B", Courses: []string{"c2", "c1"}},
			{ID: "s1", Code: "A", Courses: []string{"c1", "c2"}},
		},
	}
	a := newTestEngine(t, snap, fastConfig(), 1).Sessions()
	b := newTestEngine(t, snap, fastConfig(), 99).Sessions()

	require.Equal(t, a, b)
	// section codes sort before course codes within each section
	assert.Equal(t, "A_CS101_0", a[0].Key)
	assert.Equal(t, "A_CS102_0", a[1].Key)
	assert.Equal(t, "B_CS101_0", a[2].Key)
}

func TestBuildSessionsSkipsUnknownCourses(t *testing.T) {
	snap := Snapshot{
		Courses: []Course{{ID: "c1", Code: "CS101", WeeklySessions: 1}},
		Sections: []Section{
			{ID: "s1", Code: "A", Courses: []string{"c1", "missing"}},
		},
	}
	e := newTestEngine(t, snap, fastConfig(), 1)

	require.Len(t, e.Sessions(), 1)
}
