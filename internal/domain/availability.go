package domain

import (
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// SlotAvailability represents one bookable slot of a day
type SlotAvailability struct {
	SlotIndex int
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Capacity  int    // Concurrent reservations allowed
	Booked    int    // Non-cancelled appointments covering the slot
	Available int    // Capacity - Booked, never negative
}

// IsFull returns true if the slot has no available spots
func (s *SlotAvailability) IsFull() bool {
	return s.Available <= 0
}

// IsPartiallyAvailable returns true if the slot has some but not all spots available
func (s *SlotAvailability) IsPartiallyAvailable() bool {
	return s.Available > 0 && s.Available < s.Capacity
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *SlotAvailability) OccupancyRate() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Booked) / float64(s.Capacity) * 100
}

// DayGrid is the per-slot capacity and occupancy of one staff member on one date.
// It is built fresh for every availability query and every reservation attempt
// so both use exactly the same rules.
type DayGrid struct {
	capacity  [slot.SlotsPerDay]int
	booked    [slot.SlotsPerDay]int
	notBefore int
}

// NewDayGrid builds the grid.
//
// Candidate slots are the service windows when the service declares any for
// the weekday, otherwise the staff working window with capacity 1. Candidates
// are always clipped to the working window and the lunch break is removed
// entirely. Slots before notBefore are never bookable (time gating for today).
func NewDayGrid(day StaffDaySchedule, windows []SlotWindow, appointments []*Appointment, notBefore int) *DayGrid {
	g := &DayGrid{notBefore: clampIndex(notBefore)}

	if !day.HasWorkingHours() {
		return g
	}

	working := day.WorkingRange()
	if len(windows) == 0 {
		for i := working.Start; i < working.End; i++ {
			g.capacity[i] = DefaultCapacity
		}
	} else {
		for _, w := range windows {
			start := max(w.StartSlot, working.Start)
			end := min(w.EndSlot, working.End)
			capacity := w.EffectiveCapacity()
			for i := start; i < end; i++ {
				// Overlapping windows: the larger capacity wins
				g.capacity[i] = max(g.capacity[i], capacity)
			}
		}
	}

	if lunch, ok := day.LunchBreak(); ok {
		for i := lunch.Start; i < lunch.End; i++ {
			g.capacity[i] = 0
		}
	}

	for _, a := range appointments {
		if a == nil || !a.IsActive() {
			continue
		}
		r := a.Range()
		start := max(r.Start, 0)
		end := min(r.End, slot.SlotsPerDay)
		for i := start; i < end; i++ {
			g.booked[i]++
		}
	}

	return g
}

// Capacity returns the capacity of a slot, 0 for closed slots
func (g *DayGrid) Capacity(index int) int {
	if !slot.IsValidIndex(index) {
		return 0
	}
	return g.capacity[index]
}

// Booked returns how many active appointments cover the slot
func (g *DayGrid) Booked(index int) int {
	if !slot.IsValidIndex(index) {
		return 0
	}
	return g.booked[index]
}

// Available returns the remaining spots of a slot
func (g *DayGrid) Available(index int) int {
	return max(g.Capacity(index)-g.Booked(index), 0)
}

// IsBookable reports whether one more reservation fits into the slot
func (g *DayGrid) IsBookable(index int) bool {
	return slot.IsValidIndex(index) && index >= g.notBefore && g.Available(index) >= 1
}

// Slots returns every open slot from notBefore on, in order
func (g *DayGrid) Slots() []SlotAvailability {
	result := make([]SlotAvailability, 0)
	for i := g.notBefore; i < slot.SlotsPerDay; i++ {
		if g.capacity[i] == 0 {
			continue
		}
		start, _ := slot.SlotIndexToTime(i)
		end, _ := slot.SlotEndTime(i)
		result = append(result, SlotAvailability{
			SlotIndex: i,
			StartTime: start,
			EndTime:   end,
			Capacity:  g.capacity[i],
			Booked:    g.booked[i],
			Available: g.Available(i),
		})
	}
	return result
}

// FreeRanges returns every range of slotsNeeded consecutive bookable slots.
// Ranges may overlap each other; a range that would not fit before the end
// of the open period is not returned.
func (g *DayGrid) FreeRanges(slotsNeeded int) []slot.Range {
	ranges := make([]slot.Range, 0)
	if slotsNeeded < 1 || slotsNeeded > slot.SlotsPerDay {
		return ranges
	}

	// run = number of consecutive bookable slots ending at i
	run := 0
	for i := 0; i < slot.SlotsPerDay; i++ {
		if !g.IsBookable(i) {
			run = 0
			continue
		}
		run++
		if run >= slotsNeeded {
			ranges = append(ranges, slot.Range{Start: i - slotsNeeded + 1, End: i + 1})
		}
	}
	return ranges
}

// Conflicts returns the slots of r that cannot take one more reservation.
// An empty result means r can be booked.
func (g *DayGrid) Conflicts(r slot.Range) []int {
	conflicts := make([]int, 0)
	for i := r.Start; i < r.End; i++ {
		if !g.IsBookable(i) {
			conflicts = append(conflicts, i)
		}
	}
	return conflicts
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > slot.SlotsPerDay {
		return slot.SlotsPerDay
	}
	return i
}
