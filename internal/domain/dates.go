package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsSameDay checks that two dates fall on the same calendar day
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast checks that date is before the calendar day of now
func IsDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return dateOnly.Before(nowOnly)
}

// IsBeyondAdvanceLimit checks that date is more than advanceDays days after now.
// advanceDays = 0 means unlimited.
func IsBeyondAdvanceLimit(date, now time.Time, advanceDays int) bool {
	if advanceDays <= 0 {
		return false
	}
	maxDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, advanceDays)
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return dateOnly.After(maxDate)
}

// FirstBookableSlot returns the first slot of date whose start is not earlier
// than now plus the minimum notice. Past dates return slot.SlotsPerDay (nothing
// bookable), future dates return 0.
func FirstBookableSlot(date, now time.Time, minNoticeMinutes int) int {
	if IsDateInPast(date, now) {
		return slot.SlotsPerDay
	}
	if !IsSameDay(date, now) {
		return 0
	}

	minutes := now.Hour()*60 + now.Minute() + max(minNoticeMinutes, 0)
	if now.Second() > 0 || now.Nanosecond() > 0 {
		minutes++
	}
	first := (minutes + slot.MinutesPerSlot - 1) / slot.MinutesPerSlot
	return min(first, slot.SlotsPerDay)
}
