package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a slot-normalized appointment.
// The slot range is fixed once the appointment is committed; rescheduling
// means cancelling and reserving a new range.
type Appointment struct {
	ID        int64
	Reference uuid.UUID // Public reservation token returned to the caller
	StaffID   int64
	ServiceID int64
	ClientID  int64
	Date      time.Time // Business-local date, time part is ignored
	StartSlot int
	EndSlot   int
	SlotsUsed int
	Status    AppointmentStatus

	CancelledAt *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the slot range occupied by the appointment
func (a *Appointment) Range() slot.Range {
	return slot.Range{Start: a.StartSlot, End: a.EndSlot}
}

// IsActive returns true if the appointment still occupies its slots
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// CanBeCompleted returns true if the appointment can be marked as completed
func (a *Appointment) CanBeCompleted() bool {
	return a.Status.CanTransitionTo(StatusCompleted)
}

// IsFinal returns true if no transition leaves the status
func (s AppointmentStatus) IsFinal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> next.
// Allowed: pending -> completed, pending -> cancelled.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusCompleted || next == StatusCancelled
}

// IsValid returns true for known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// StaffDayFilter selects the appointments of one staff member on one date
type StaffDayFilter struct {
	StaffID         int64
	Date            time.Time
	IncludeInactive bool // Include cancelled appointments
}
