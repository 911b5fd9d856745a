package migrate_legacy

import "github.com/m04kA/SMC-SchedulingService/internal/domain"

// Settings параметры пакетной миграции
type Settings struct {
	BatchSize int  // Размер страницы чтения
	DryRun    bool // Только конвертировать и посчитать, ничего не записывать
}

// ServiceMigration результат конвертации услуги
type ServiceMigration struct {
	SlotsNeeded      int
	AdjustedDuration int    // SlotsNeeded * 30
	Rewritten        bool   // Длительность изменилась
	AuditNote        string // Пусто, если длительность не менялась
}

// AppointmentMigration результат конвертации записи
type AppointmentMigration struct {
	StartSlot int
	EndSlot   int
	SlotsUsed int
	Notes     []string
}

// StaffDayMigration результат конвертации одного дня расписания
type StaffDayMigration struct {
	Schedule     domain.StaffDaySchedule
	WorkingSlots []int // Все слоты [StartSlot, EndSlot); обед вычитается при расчёте доступности
	Notes        []string
}

// StaffMigration результат конвертации недельного расписания сотрудника
type StaffMigration struct {
	StaffID int64
	Days    []StaffDayMigration
}

// RecordError ошибка миграции одной записи
type RecordError struct {
	Entity   domain.MigrationEntity
	RecordID int64
	Err      error
}

// Summary итог прогона миграции
type Summary struct {
	RunID     string
	DryRun    bool
	Processed int
	Migrated  int
	Errored   int
	Notes     int // Количество записанных заметок аудита
	Errors    []RecordError
}
