package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// AppointmentResponse данные записи
type AppointmentResponse struct {
	ID          int64      `json:"id"`
	Reference   string     `json:"reference"`
	StaffID     int64      `json:"staffId"`
	ServiceID   int64      `json:"serviceId"`
	ClientID    int64      `json:"clientId"`
	Date        string     `json:"date"`      // "2025-10-15"
	StartSlot   int        `json:"startSlot"` // включительно
	EndSlot     int        `json:"endSlot"`   // не включительно
	SlotsUsed   int        `json:"slotsUsed"`
	StartTime   string     `json:"startTime"` // "10:00"
	EndTime     string     `json:"endTime"`   // "11:00", может быть "24:00"
	Status      string     `json:"status"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AppointmentListResponse список записей сотрудника на дату
type AppointmentListResponse struct {
	StaffID      int64                 `json:"staffId"`
	Date         string                `json:"date"`
	Appointments []AppointmentResponse `json:"appointments"`
}

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	startTime, _ := slot.SlotIndexToTime(a.StartSlot)
	endTime, _ := slot.SlotEndTime(a.EndSlot - 1)

	return &AppointmentResponse{
		ID:          a.ID,
		Reference:   a.Reference.String(),
		StaffID:     a.StaffID,
		ServiceID:   a.ServiceID,
		ClientID:    a.ClientID,
		Date:        a.Date.Format(domain.DateFormat),
		StartSlot:   a.StartSlot,
		EndSlot:     a.EndSlot,
		SlotsUsed:   a.SlotsUsed,
		StartTime:   startTime,
		EndTime:     endTime,
		Status:      string(a.Status),
		CancelledAt: a.CancelledAt,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(staffID int64, date time.Time, list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		StaffID:      staffID,
		Date:         date.Format(domain.DateFormat),
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}
