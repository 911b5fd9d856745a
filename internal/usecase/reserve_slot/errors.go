package reserve_slot

import (
	"errors"
	"fmt"
)

var (
	// ErrStaffNotFound возвращается, когда сотрудник не найден
	ErrStaffNotFound = errors.New("reserve_slot: staff not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("reserve_slot: service not found")

	// ErrSlotInPast возвращается, когда начало диапазона уже прошло (с учётом minBookingNotice)
	ErrSlotInPast = errors.New("reserve_slot: slot start is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("reserve_slot: date is too far in the future")

	// ErrConflict общий признак конфликта; *ConflictError совпадает с ним через errors.Is
	ErrConflict = errors.New("reserve_slot: slot range conflict")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_slot: internal error")
)

// ConflictReason причина отказа в резервировании
type ConflictReason string

const (
	// ReasonSlotUnavailable хотя бы один слот диапазона занят, закрыт или вне окна услуги
	ReasonSlotUnavailable ConflictReason = "slot_unavailable"

	// ReasonReservationRace конкурентная транзакция помешала фиксации; можно повторить запрос
	ReasonReservationRace ConflictReason = "reservation_race"
)

// ConflictError отказ в резервировании диапазона.
// Другой диапазон автоматически не подбирается.
type ConflictError struct {
	Reason           ConflictReason
	ConflictingSlots []int
	Err              error
}

func (e *ConflictError) Error() string {
	if len(e.ConflictingSlots) > 0 {
		return fmt.Sprintf("%s: %s, conflicting slots %v", ErrConflict, e.Reason, e.ConflictingSlots)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrConflict, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrConflict, e.Reason)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
