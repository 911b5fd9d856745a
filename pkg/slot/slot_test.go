package slot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToSlotIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"00:29", 0},
		{"00:30", 1},
		{"09:00", 18},
		{"09:30", 19},
		{"09:45", 19},
		{"14:00", 28},
		{"23:30", 47},
		{"23:59", 47},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := TimeToSlotIndex(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeToSlotIndex_InvalidFormat(t *testing.T) {
	for _, in := range []string{"", "9:00", "09:0", "24:00", "12:60", "ab:cd", "09-00", "09:00:00", " 9:00"} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			_, err := TimeToSlotIndex(in)
			assert.ErrorIs(t, err, ErrInvalidTimeFormat)
		})
	}
}

func TestSlotIndexToTime(t *testing.T) {
	got, err := SlotIndexToTime(19)
	require.NoError(t, err)
	assert.Equal(t, "09:30", got)

	_, err = SlotIndexToTime(-1)
	assert.ErrorIs(t, err, ErrSlotOutOfRange)

	_, err = SlotIndexToTime(SlotsPerDay)
	assert.ErrorIs(t, err, ErrSlotOutOfRange)

	end, err := SlotEndTime(47)
	require.NoError(t, err)
	assert.Equal(t, "24:00", end)
}

func TestRoundTrip_AlignedTimes(t *testing.T) {
	for index := 0; index < SlotsPerDay; index++ {
		hhmm, err := SlotIndexToTime(index)
		require.NoError(t, err)

		back, err := TimeToSlotIndex(hhmm)
		require.NoError(t, err)
		assert.Equal(t, index, back)

		again, err := SlotIndexToTime(back)
		require.NoError(t, err)
		assert.Equal(t, hhmm, again)
	}
}

func TestDurationToSlots(t *testing.T) {
	assert.Equal(t, 1, DurationToSlots(30))
	assert.Equal(t, 2, DurationToSlots(45))
	assert.Equal(t, 2, DurationToSlots(60))
	assert.Equal(t, 3, DurationToSlots(90))
	assert.Equal(t, 1, DurationToSlots(1))
	assert.Equal(t, 1, DurationToSlots(0))

	for m := 1; m <= 24*60; m++ {
		slots := DurationToSlots(m)
		assert.GreaterOrEqual(t, SlotsToDuration(slots), m)
		assert.Equal(t, (m+29)/30, slots)
		assert.Less(t, SlotsToDuration(slots)-m, MinutesPerSlot)
	}
}

func TestIsValidSlotRange(t *testing.T) {
	assert.True(t, IsValidSlotRange(0, 1))
	assert.True(t, IsValidSlotRange(46, 48))
	assert.False(t, IsValidSlotRange(10, 10))
	assert.False(t, IsValidSlotRange(-1, 2))
	assert.False(t, IsValidSlotRange(47, 49))
	assert.False(t, IsValidSlotRange(12, 8))
}

func TestRange(t *testing.T) {
	r, err := NewRange(18, 2)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 18, End: 20}, r)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 60, r.Duration())
	assert.Equal(t, []int{18, 19}, r.Slots())
	assert.Equal(t, "09:00-10:00", r.String())
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20))

	assert.True(t, r.Overlaps(Range{Start: 19, End: 21}))
	assert.False(t, r.Overlaps(Range{Start: 20, End: 22}))
	assert.False(t, r.Overlaps(Range{Start: 16, End: 18}))

	_, err = NewRange(47, 2)
	assert.ErrorIs(t, err, ErrInvalidSlotRange)

	_, err = NewRange(10, 0)
	assert.ErrorIs(t, err, ErrInvalidSlotRange)
}
