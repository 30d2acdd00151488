package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"13:45", 825, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"garbage", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:00", FormatClock(540))
	assert.Equal(t, "13:45", FormatClock(825))
	assert.Equal(t, "00:00", FormatClock(minutesPerDay))
}

func TestSpanEndWrapsAtMidnight(t *testing.T) {
	assert.Equal(t, 17*60, spanEnd(15*60, 2))
	assert.Equal(t, 60, spanEnd(23*60, 2))
}

func TestRangesOverlap(t *testing.T) {
	assert.True(t, rangesOverlap(540, 660, 600, 720))
	assert.True(t, rangesOverlap(600, 720, 540, 660))
	assert.False(t, rangesOverlap(540, 600, 600, 660))
}

func TestSpansLunch(t *testing.T) {
	assert.True(t, spansLunch(12*60, 14*60))
	assert.True(t, spansLunch(13*60, 14*60))
	assert.False(t, spansLunch(11*60, 13*60))
	assert.False(t, spansLunch(lunchEnd, 15*60))
}

func hourSlot(id, day string, hour int) Slot {
	return Slot{ID: id, Day: day, Start: hour * 60, End: hour*60 + 60}
}

func TestSuitableSlotsExcludesNoonForLabs(t *testing.T) {
	grid := []Slot{
		hourSlot("s1", "Monday", 11),
		hourSlot("s2", "Monday", 12),
		hourSlot("s3", "Monday", 14),
	}
	lab := Course{ID: "c1", IsLab: true, Duration: 1}

	got := suitableSlots(lab, grid)

	require.Len(t, got, 2)
	for _, s := range got {
		assert.NotEqual(t, noonStart, s.Start)
	}
}

func TestSuitableSlotsBoundsLongSessions(t *testing.T) {
	grid := []Slot{
		hourSlot("s1", "Monday", 9),
		hourSlot("s2", "Monday", 15),
		hourSlot("s3", "Monday", 16),
	}
	long := Course{ID: "c1", Duration: 2}

	got := suitableSlots(long, grid)

	require.Len(t, got, 2)
	for _, s := range got {
		assert.LessOrEqual(t, spanEnd(s.Start, long.Duration), lastSessionEnd)
	}
}

func TestSuitableSlotsIdempotent(t *testing.T) {
	grid := []Slot{
		hourSlot("s1", "Monday", 9),
		hourSlot("s2", "Tuesday", 12),
		hourSlot("s3", "Friday", 16),
	}
	course := Course{ID: "c1", IsLab: true, Duration: 2}

	once := suitableSlots(course, grid)
	twice := suitableSlots(course, once)

	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(grid))
}
