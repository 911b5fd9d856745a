package migrate_legacy

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// LegacyRepository доступ к немигрированным legacy-записям
type LegacyRepository interface {
	ListUnmigratedServices(ctx context.Context, afterID int64, limit int) ([]domain.LegacyService, error)
	SaveServiceSlots(ctx context.Context, serviceID int64, slotsNeeded, durationMinutes int) error

	ListUnmigratedStaffAvailability(ctx context.Context, afterStaffID int64, limit int) ([]domain.LegacyStaffAvailability, error)
	SaveStaffDay(ctx context.Context, staffID int64, day domain.StaffDaySchedule, workingSlots []int) error

	ListUnmigratedAppointments(ctx context.Context, afterID int64, limit int) ([]domain.LegacyAppointment, error)
	SaveAppointmentSlots(ctx context.Context, appointmentID int64, startSlot, endSlot, slotsUsed int) error

	WriteAudit(ctx context.Context, audit domain.MigrationAudit) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
