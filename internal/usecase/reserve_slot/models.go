package reserve_slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// Settings правила бронирования из конфигурации
type Settings struct {
	Location                *time.Location
	AdvanceBookingDays      int // 0 = без ограничений
	MinBookingNoticeMinutes int
}

// Request модель запроса на резервирование диапазона
type Request struct {
	StaffID   int64
	ServiceID int64
	ClientID  int64
	Date      time.Time // Используются только год, месяц и день
	StartSlot int       // Индекс первого слота; длина диапазона берётся из услуги
}

// Response модель созданной записи
type Response struct {
	AppointmentID int64
	Reference     uuid.UUID // Токен резервирования для клиента
	StaffID       int64
	ServiceID     int64
	ClientID      int64
	Date          time.Time
	Range         slot.Range
	StartTime     string // "HH:MM"
	EndTime       string // "HH:MM", может быть "24:00"
	Status        string
	CreatedAt     time.Time
}
