package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func committedEntries() []PlacedSession {
	return []PlacedSession{
		{
			EntryID: "e1", Day: "Monday", Start: 9 * 60, End: 10 * 60, Duration: 1,
			InstructorID: "i1", InstructorName: "Dr. Rao",
			RoomID: "r1", RoomNumber: "101",
			SectionID: "s1", SectionCode: "A", CourseName: "Algorithms",
		},
		{
			EntryID: "e2", Day: "Monday", Start: 10 * 60, End: 12 * 60, Duration: 2,
			InstructorID: "i2", InstructorName: "Dr. Iyer",
			RoomID: "r2", RoomNumber: "102",
			SectionID: "s2", SectionCode: "B", CourseName: "Databases",
		},
	}
}

func TestCheckSlotConflictsInstructorClash(t *testing.T) {
	got := CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Monday", Start: 9 * 60,
		InstructorID: "i1", RoomID: "rX", SectionID: "sX",
	})

	require.Len(t, got, 1)
	assert.Equal(t, ConflictInstructor, got[0].Type)
	assert.Equal(t, "09:00-10:00", got[0].Time)
	assert.Equal(t, "A", got[0].Section)
}

func TestCheckSlotConflictsMultiHourOccupancy(t *testing.T) {
	// e2 runs 10:00-12:00, so its second hour blocks an 11:00 move
	got := CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Monday", Start: 11 * 60,
		InstructorID: "iX", RoomID: "r2", SectionID: "sX",
	})

	require.Len(t, got, 1)
	assert.Equal(t, ConflictRoom, got[0].Type)
	assert.Equal(t, "Databases", got[0].Course)
}

func TestCheckSlotConflictsTagPriority(t *testing.T) {
	// instructor wins over room and section when all three match
	got := CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Monday", Start: 9 * 60,
		InstructorID: "i1", RoomID: "r1", SectionID: "s1",
	})

	require.Len(t, got, 1)
	assert.Equal(t, ConflictInstructor, got[0].Type)
}

func TestCheckSlotConflictsSectionClash(t *testing.T) {
	got := CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Monday", Start: 9 * 60,
		InstructorID: "iX", RoomID: "rX", SectionID: "s1",
	})

	require.Len(t, got, 1)
	assert.Equal(t, ConflictSection, got[0].Type)
}

func TestCheckSlotConflictsExcludesMovingEntry(t *testing.T) {
	got := CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Monday", Start: 9 * 60,
		InstructorID: "i1", RoomID: "r1", SectionID: "s1",
		ExcludeEntryID: "e1",
	})

	assert.Empty(t, got)
}

func TestCheckSlotConflictsDifferentDayOrTime(t *testing.T) {
	assert.Empty(t, CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Tuesday", Start: 9 * 60,
		InstructorID: "i1", RoomID: "r1", SectionID: "s1",
	}))
	assert.Empty(t, CheckSlotConflicts(committedEntries(), MoveRequest{
		Day: "Monday", Start: 14 * 60,
		InstructorID: "i1", RoomID: "r1", SectionID: "s1",
	}))
}
