package reserve_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// StaffRepository интерфейс репозитория расписаний сотрудников
type StaffRepository interface {
	GetSchedule(ctx context.Context, staffID int64) (*domain.StaffSchedule, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetSpec(ctx context.Context, serviceID int64) (*domain.ServiceSlotSpec, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// LockStaffDay сериализует резервирования одного сотрудника на одну дату
	LockStaffDay(ctx context.Context, staffID int64, date time.Time) error
	ListByStaffAndDate(ctx context.Context, filter domain.StaffDayFilter) ([]*domain.Appointment, error)
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityNotifier сообщает внешним кэшам, что доступность изменилась
type AvailabilityNotifier interface {
	NotifyChanged(ctx context.Context, staffID int64, date time.Time, reason string)
}

// MetricsRecorder учитывает исходы резервирования
type MetricsRecorder interface {
	IncReservation(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

type noopMetrics struct{}

func (noopMetrics) IncReservation(string) {}

type noopNotifier struct{}

func (noopNotifier) NotifyChanged(context.Context, int64, time.Time, string) {}
