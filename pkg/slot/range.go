package slot

import "fmt"

// Range is a contiguous block of slots [Start, End).
type Range struct {
	Start int `json:"startSlot"`
	End   int `json:"endSlot"`
}

// NewRange builds the range of slotsNeeded slots beginning at start.
func NewRange(start, slotsNeeded int) (Range, error) {
	if slotsNeeded < 1 {
		return Range{}, fmt.Errorf("%w: slotsNeeded must be at least 1, got %d", ErrInvalidSlotRange, slotsNeeded)
	}
	end := start + slotsNeeded
	if !IsValidSlotRange(start, end) {
		return Range{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidSlotRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Len returns the number of slots in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Valid reports whether the range lies within one day and is not empty.
func (r Range) Valid() bool {
	return IsValidSlotRange(r.Start, r.End)
}

// Contains reports whether the slot index belongs to the range.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// Overlaps reports whether two ranges share at least one slot.
// Adjacent ranges ([8,10) and [10,12)) do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Slots returns every slot index of the range in order.
func (r Range) Slots() []int {
	if r.End <= r.Start {
		return []int{}
	}
	out := make([]int, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		out = append(out, i)
	}
	return out
}

// Duration returns the length of the range in minutes.
func (r Range) Duration() int {
	return SlotsToDuration(r.Len())
}

// String formats the range as wall-clock times, e.g. "09:00-10:00".
func (r Range) String() string {
	if !r.Valid() {
		return fmt.Sprintf("[%d,%d)", r.Start, r.End)
	}
	start, _ := SlotIndexToTime(r.Start)
	end, _ := SlotEndTime(r.End - 1)
	return start + "-" + end
}
