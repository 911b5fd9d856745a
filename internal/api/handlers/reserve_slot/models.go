package reserve_slot

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	reserveSlot "github.com/m04kA/SMC-SchedulingService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

var (
	errInvalidDate     = errors.New("invalid date")
	errMissingStart    = errors.New("startSlot or startTime is required")
	errAmbiguousStart  = errors.New("only one of startSlot and startTime is allowed")
	errMisalignedStart = errors.New("startTime is not on a slot boundary")
)

// ReserveSlotRequest HTTP request model.
// Начало задаётся либо индексом слота, либо временем "HH:MM" на границе слота.
type ReserveSlotRequest struct {
	StaffID   int64   `json:"staffId"`
	ServiceID int64   `json:"serviceId"`
	ClientID  int64   `json:"clientId"`
	Date      string  `json:"date"` // "2025-10-15"
	StartSlot *int    `json:"startSlot,omitempty"`
	StartTime *string `json:"startTime,omitempty"` // "10:00"
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	StaffID   int64  `json:"staffId"`
	ServiceID int64  `json:"serviceId"`
	ClientID  int64  `json:"clientId"`
	Date      string `json:"date"`
	StartSlot int    `json:"startSlot"`
	EndSlot   int    `json:"endSlot"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveSlotRequest) ToUseCaseRequest() (*reserveSlot.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startSlot, err := r.startSlot()
	if err != nil {
		return nil, err
	}

	return &reserveSlot.Request{
		StaffID:   r.StaffID,
		ServiceID: r.ServiceID,
		ClientID:  r.ClientID,
		Date:      date,
		StartSlot: startSlot,
	}, nil
}

func (r *ReserveSlotRequest) startSlot() (int, error) {
	switch {
	case r.StartSlot == nil && r.StartTime == nil:
		return 0, errMissingStart
	case r.StartSlot != nil && r.StartTime != nil:
		return 0, errAmbiguousStart
	case r.StartSlot != nil:
		return *r.StartSlot, nil
	}

	index, err := slot.TimeToSlotIndex(*r.StartTime)
	if err != nil {
		return 0, err
	}
	// Время внутри слота не округляется молча
	if canonical, _ := slot.SlotIndexToTime(index); canonical != *r.StartTime {
		return 0, fmt.Errorf("%w: %s", errMisalignedStart, *r.StartTime)
	}
	return index, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveSlot.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:        resp.AppointmentID,
		Reference: resp.Reference.String(),
		StaffID:   resp.StaffID,
		ServiceID: resp.ServiceID,
		ClientID:  resp.ClientID,
		Date:      resp.Date.Format(domain.DateFormat),
		StartSlot: resp.Range.Start,
		EndSlot:   resp.Range.End,
		StartTime: resp.StartTime,
		EndTime:   resp.EndTime,
		Status:    resp.Status,
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
	}
}
