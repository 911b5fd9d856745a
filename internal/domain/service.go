package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// SlotWindow is an explicit bookable window of a service on one weekday.
// Capacity > 1 denotes a group/class event.
type SlotWindow struct {
	ID        int64
	ServiceID int64
	Weekday   time.Weekday
	StartSlot int
	EndSlot   int
	Capacity  int
}

// Range returns the slot range of the window
func (w SlotWindow) Range() slot.Range {
	return slot.Range{Start: w.StartSlot, End: w.EndSlot}
}

// EffectiveCapacity returns the window capacity, defaulting to 1 for individual services
func (w SlotWindow) EffectiveCapacity() int {
	if w.Capacity < MinCapacity {
		return DefaultCapacity
	}
	return w.Capacity
}

// ServiceSlotSpec is the scheduling view of a service
type ServiceSlotSpec struct {
	ServiceID       int64
	Name            string
	DurationMinutes int
	SlotsNeeded     int
	Windows         []SlotWindow
}

// WindowsFor returns the service windows declared for the weekday
func (s *ServiceSlotSpec) WindowsFor(weekday time.Weekday) []SlotWindow {
	windows := make([]SlotWindow, 0)
	for _, w := range s.Windows {
		if w.Weekday == weekday {
			windows = append(windows, w)
		}
	}
	return windows
}

// EffectiveSlotsNeeded returns SlotsNeeded, deriving it from the duration when unset
func (s *ServiceSlotSpec) EffectiveSlotsNeeded() int {
	if s.SlotsNeeded >= 1 {
		return s.SlotsNeeded
	}
	return slot.DurationToSlots(s.DurationMinutes)
}
