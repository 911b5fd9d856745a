package domain

import "github.com/m04kA/SMC-SchedulingService/pkg/slot"

// Default configuration values
const (
	DefaultCapacity                = 1
	DefaultMinBookingNoticeMinutes = 0
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
)

// Business validation constants
const (
	MinCapacity           = 1
	MaxCapacity           = 100
	MaxAdvanceBookingDays = 365 // 1 year
	MaxServiceDuration    = slot.SlotsPerDay * slot.MinutesPerSlot
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses lists statuses whose appointments no longer occupy slots
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
}

// ActiveStatuses lists statuses whose appointments occupy slots
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusCompleted,
}
