package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// StaffDaySchedule is the working window of a staff member on one weekday
type StaffDaySchedule struct {
	Weekday   time.Weekday
	IsWorking bool
	StartSlot int
	EndSlot   int

	// Lunch break excluded from availability (optional)
	LunchBreakStartSlot *int
	LunchBreakEndSlot   *int
}

// WorkingRange returns the working slot range of the day
func (d StaffDaySchedule) WorkingRange() slot.Range {
	return slot.Range{Start: d.StartSlot, End: d.EndSlot}
}

// LunchBreak returns the lunch break range if one is configured and valid
func (d StaffDaySchedule) LunchBreak() (slot.Range, bool) {
	if d.LunchBreakStartSlot == nil || d.LunchBreakEndSlot == nil {
		return slot.Range{}, false
	}
	r := slot.Range{Start: *d.LunchBreakStartSlot, End: *d.LunchBreakEndSlot}
	if !r.Valid() {
		return slot.Range{}, false
	}
	return r, true
}

// HasWorkingHours returns true if the staff member works on this day
func (d StaffDaySchedule) HasWorkingHours() bool {
	return d.IsWorking && slot.IsValidSlotRange(d.StartSlot, d.EndSlot)
}

// StaffSchedule is the weekly schedule of a staff member
type StaffSchedule struct {
	StaffID int64
	Days    map[time.Weekday]StaffDaySchedule
}

// DayFor returns the schedule for the weekday of date.
// A weekday without a record is a day off.
func (s *StaffSchedule) DayFor(date time.Time) StaffDaySchedule {
	weekday := date.Weekday()
	if day, ok := s.Days[weekday]; ok {
		return day
	}
	return StaffDaySchedule{Weekday: weekday, IsWorking: false}
}
