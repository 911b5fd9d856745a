package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

func workingDay(start, end int) StaffDaySchedule {
	return StaffDaySchedule{Weekday: time.Monday, IsWorking: true, StartSlot: start, EndSlot: end}
}

func appointment(start, end int, status AppointmentStatus) *Appointment {
	return &Appointment{StartSlot: start, EndSlot: end, SlotsUsed: end - start, Status: status}
}

func TestDayGrid_OccupiedExample(t *testing.T) {
	// Occupied slots 10, 11, 15, 16, 17
	appointments := []*Appointment{
		appointment(10, 12, StatusPending),
		appointment(15, 18, StatusPending),
	}
	grid := NewDayGrid(workingDay(0, slot.SlotsPerDay), nil, appointments, 0)

	ranges := grid.FreeRanges(2)

	assert.Contains(t, ranges, slot.Range{Start: 8, End: 10})
	assert.NotContains(t, ranges, slot.Range{Start: 9, End: 11})
	assert.Contains(t, ranges, slot.Range{Start: 12, End: 14})
	assert.NotContains(t, ranges, slot.Range{Start: 15, End: 17})

	assert.Empty(t, grid.Conflicts(slot.Range{Start: 8, End: 10}))
	assert.Equal(t, []int{10}, grid.Conflicts(slot.Range{Start: 9, End: 11}))
	assert.Equal(t, []int{15, 16}, grid.Conflicts(slot.Range{Start: 15, End: 17}))
}

func TestDayGrid_NotWorking(t *testing.T) {
	grid := NewDayGrid(StaffDaySchedule{Weekday: time.Sunday}, nil, nil, 0)

	assert.Empty(t, grid.Slots())
	assert.Empty(t, grid.FreeRanges(1))
}

func TestDayGrid_RangesMustFitBeforeClosing(t *testing.T) {
	grid := NewDayGrid(workingDay(18, 34), nil, nil, 0) // 09:00-17:00

	ranges := grid.FreeRanges(3)

	require.NotEmpty(t, ranges)
	last := ranges[len(ranges)-1]
	assert.Equal(t, slot.Range{Start: 31, End: 34}, last)
	for _, r := range ranges {
		assert.LessOrEqual(t, r.End, 34)
		assert.GreaterOrEqual(t, r.Start, 18)
	}
}

func TestDayGrid_LunchBreakExcluded(t *testing.T) {
	day := workingDay(18, 34)
	day.LunchBreakStartSlot = ptr.Ptr(26) // 13:00
	day.LunchBreakEndSlot = ptr.Ptr(28)   // 14:00

	grid := NewDayGrid(day, nil, nil, 0)

	for _, s := range grid.Slots() {
		assert.NotEqual(t, 26, s.SlotIndex)
		assert.NotEqual(t, 27, s.SlotIndex)
	}
	for _, r := range grid.FreeRanges(2) {
		assert.False(t, r.Overlaps(slot.Range{Start: 26, End: 28}), "range %v crosses lunch", r)
	}
	assert.Equal(t, []int{26, 27}, grid.Conflicts(slot.Range{Start: 25, End: 29})[0:2])
}

func TestDayGrid_ServiceWindowsClippedToWorkingHours(t *testing.T) {
	windows := []SlotWindow{
		{Weekday: time.Monday, StartSlot: 16, EndSlot: 22, Capacity: 1}, // 08:00-11:00
		{Weekday: time.Monday, StartSlot: 30, EndSlot: 32},              // capacity defaults to 1
	}

	grid := NewDayGrid(workingDay(18, 34), windows, nil, 0)

	indexes := make([]int, 0)
	for _, s := range grid.Slots() {
		indexes = append(indexes, s.SlotIndex)
		assert.Equal(t, 1, s.Capacity)
	}
	assert.Equal(t, []int{18, 19, 20, 21, 30, 31}, indexes)
	assert.NotContains(t, grid.FreeRanges(2), slot.Range{Start: 21, End: 23})
}

func TestDayGrid_CapacityWindow(t *testing.T) {
	windows := []SlotWindow{{Weekday: time.Monday, StartSlot: 20, EndSlot: 22, Capacity: 3}}
	appointments := []*Appointment{
		appointment(20, 22, StatusPending),
		appointment(20, 22, StatusCompleted),
		appointment(20, 22, StatusCancelled),
	}

	grid := NewDayGrid(workingDay(18, 34), windows, appointments, 0)

	slots := grid.Slots()
	require.Len(t, slots, 2)
	assert.Equal(t, 3, slots[0].Capacity)
	assert.Equal(t, 2, slots[0].Booked)
	assert.Equal(t, 1, slots[0].Available)
	assert.True(t, slots[0].IsPartiallyAvailable())
	assert.Equal(t, []slot.Range{{Start: 20, End: 22}}, grid.FreeRanges(2))

	full := NewDayGrid(workingDay(18, 34), windows, append(appointments, appointment(20, 22, StatusPending)), 0)
	assert.Empty(t, full.FreeRanges(2))
	assert.Equal(t, []int{20, 21}, full.Conflicts(slot.Range{Start: 20, End: 22}))
}

func TestDayGrid_TimeGating(t *testing.T) {
	grid := NewDayGrid(workingDay(18, 34), nil, nil, 25)

	slots := grid.Slots()
	require.NotEmpty(t, slots)
	assert.Equal(t, 25, slots[0].SlotIndex)
	assert.Equal(t, slot.Range{Start: 25, End: 26}, grid.FreeRanges(1)[0])
	assert.Equal(t, []int{24}, grid.Conflicts(slot.Range{Start: 24, End: 26}))
}

func TestDayGrid_CancelledAppointmentFreesSlots(t *testing.T) {
	a := appointment(20, 22, StatusPending)
	grid := NewDayGrid(workingDay(18, 34), nil, []*Appointment{a}, 0)
	assert.NotEmpty(t, grid.Conflicts(a.Range()))

	a.Status = StatusCancelled
	grid = NewDayGrid(workingDay(18, 34), nil, []*Appointment{a}, 0)
	assert.Empty(t, grid.Conflicts(a.Range()))
}

func TestFirstBookableSlot(t *testing.T) {
	loc := time.UTC
	today := time.Date(2025, 10, 15, 0, 0, 0, 0, loc)

	tests := []struct {
		name      string
		date      time.Time
		now       time.Time
		minNotice int
		want      int
	}{
		{"future date", today.AddDate(0, 0, 1), time.Date(2025, 10, 15, 9, 40, 0, 0, loc), 0, 0},
		{"past date", today.AddDate(0, 0, -1), time.Date(2025, 10, 15, 9, 40, 0, 0, loc), 0, slot.SlotsPerDay},
		{"exact slot start", today, time.Date(2025, 10, 15, 9, 0, 0, 0, loc), 0, 18},
		{"one second after", today, time.Date(2025, 10, 15, 9, 0, 1, 0, loc), 0, 19},
		{"mid slot", today, time.Date(2025, 10, 15, 9, 40, 0, 0, loc), 0, 20},
		{"with notice", today, time.Date(2025, 10, 15, 9, 40, 0, 0, loc), 60, 22},
		{"late evening", today, time.Date(2025, 10, 15, 23, 50, 0, 0, loc), 0, slot.SlotsPerDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstBookableSlot(tt.date, tt.now, tt.minNotice))
		})
	}
}

func TestIsBeyondAdvanceLimit(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsBeyondAdvanceLimit(now.AddDate(1, 0, 0), now, 0))
	assert.False(t, IsBeyondAdvanceLimit(now.AddDate(0, 0, 7), now, 7))
	assert.True(t, IsBeyondAdvanceLimit(now.AddDate(0, 0, 8), now, 7))
}
