package get_availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// Settings правила бронирования из конфигурации
type Settings struct {
	Location                *time.Location // Часовой пояс бизнеса
	AdvanceBookingDays      int            // 0 = без ограничений
	MinBookingNoticeMinutes int
}

// Request модель запроса доступности
type Request struct {
	StaffID   int64     // ID сотрудника
	ServiceID int64     // ID услуги
	Date      time.Time // Дата (используются только год, месяц и день)
}

// Response модель ответа с доступностью на день
type Response struct {
	StaffID     int64
	ServiceID   int64
	Date        time.Time
	SlotsNeeded int                       // Длина диапазона для услуги
	AllSlots    []domain.SlotAvailability // Все открытые слоты дня
	FreeRanges  []FreeRange               // Диапазоны, которые можно забронировать
}

// FreeRange свободный диапазон из SlotsNeeded слотов подряд
type FreeRange struct {
	Range     slot.Range
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM", может быть "24:00"
}
