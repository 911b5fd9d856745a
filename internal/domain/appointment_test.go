package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointment_Flags(t *testing.T) {
	a := &Appointment{StartSlot: 20, EndSlot: 23, SlotsUsed: 3, Status: StatusPending}

	assert.True(t, a.IsActive())
	assert.True(t, a.CanBeCancelled())
	assert.True(t, a.CanBeCompleted())
	assert.Equal(t, 3, a.Range().Len())

	a.Status = StatusCompleted
	assert.True(t, a.IsActive())
	assert.True(t, a.Status.IsFinal())
	assert.False(t, a.CanBeCancelled())

	a.Status = StatusCancelled
	assert.False(t, a.IsActive())
	assert.False(t, a.CanBeCompleted())
}

func TestAppointmentStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.False(t, AppointmentStatus("confirmed").IsValid())
}
