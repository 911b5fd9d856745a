// Package slot converts wall-clock times and durations to fixed 30-minute
// slot indices. All slot arithmetic in the service goes through here.
package slot

import (
	"errors"
	"fmt"
)

const (
	// MinutesPerSlot is the length of one slot.
	MinutesPerSlot = 30
	// SlotsPerHour is the number of slots in one hour.
	SlotsPerHour = 60 / MinutesPerSlot
	// SlotsPerDay is the number of slots in one business-local day.
	SlotsPerDay = 24 * SlotsPerHour
)

var (
	// ErrInvalidTimeFormat is returned when a time is not a 24h "HH:MM" string
	ErrInvalidTimeFormat = errors.New("slot: invalid time format, expected HH:MM")

	// ErrSlotOutOfRange is returned when a slot index is outside [0, SlotsPerDay)
	ErrSlotOutOfRange = errors.New("slot: slot index out of range")

	// ErrInvalidSlotRange is returned when a range is empty or crosses the day boundary
	ErrInvalidSlotRange = errors.New("slot: invalid slot range")
)

// TimeToSlotIndex returns the slot containing the given "HH:MM" time.
// Minutes are truncated to the slot start: "09:45" is slot 19.
func TimeToSlotIndex(hhmm string) (int, error) {
	hour, minute, err := parseClock(hhmm)
	if err != nil {
		return 0, err
	}

	index := hour * SlotsPerHour
	if minute >= MinutesPerSlot {
		index++
	}
	return index, nil
}

// SlotIndexToTime returns the "HH:MM" start time of a slot.
func SlotIndexToTime(index int) (string, error) {
	if index < 0 || index >= SlotsPerDay {
		return "", fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	return formatClock(index * MinutesPerSlot), nil
}

// SlotEndTime returns the "HH:MM" end time of a slot. The last slot of the
// day ends at "24:00".
func SlotEndTime(index int) (string, error) {
	if index < 0 || index >= SlotsPerDay {
		return "", fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	return formatClock((index + 1) * MinutesPerSlot), nil
}

// DurationToSlots returns how many slots a duration occupies. The result is
// always rounded up and is never less than 1.
func DurationToSlots(minutes int) int {
	if minutes <= 0 {
		return 1
	}
	return (minutes + MinutesPerSlot - 1) / MinutesPerSlot
}

// SlotsToDuration returns the length of the given number of slots in minutes.
func SlotsToDuration(slots int) int {
	return slots * MinutesPerSlot
}

// IsValidSlotRange reports whether [start, end) is a non-empty range within one day.
func IsValidSlotRange(start, end int) bool {
	return start >= 0 && start < end && end <= SlotsPerDay
}

// IsValidIndex reports whether index is a slot of the day.
func IsValidIndex(index int) bool {
	return index >= 0 && index < SlotsPerDay
}

func parseClock(s string) (int, int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	digits := [4]byte{s[0], s[1], s[3], s[4]}
	for _, d := range digits {
		if d < '0' || d > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
	}

	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return hour, minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
