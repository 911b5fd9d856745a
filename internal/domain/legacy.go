package domain

import "time"

// LegacyService is a pre-slot service record with a free-form duration
type LegacyService struct {
	ID              int64
	Name            string
	DurationMinutes int
}

// LegacyAppointment is a pre-slot appointment: wall-clock start plus minutes.
// Only the migration adapter converts it into an Appointment.
type LegacyAppointment struct {
	ID              int64
	StaffID         int64
	ServiceID       int64
	Date            time.Time
	StartTime       string // "HH:MM"
	DurationMinutes int
	Status          string
}

// LegacyStaffDay is one weekday of a pre-slot staff schedule.
// Nil times mean the field was never filled in.
type LegacyStaffDay struct {
	Weekday        time.Weekday
	IsWorking      bool
	StartTime      *string
	EndTime        *string
	LunchStartTime *string
	LunchEndTime   *string
}

// LegacyStaffAvailability is the pre-slot weekly schedule of a staff member
type LegacyStaffAvailability struct {
	StaffID int64
	Days    []LegacyStaffDay
}

// MigrationEntity names the kind of record being migrated
type MigrationEntity string

const (
	EntityService           MigrationEntity = "service"
	EntityStaffAvailability MigrationEntity = "staff_availability"
	EntityAppointment       MigrationEntity = "appointment"
)

// MigrationAudit is one audit note written while migrating a record
type MigrationAudit struct {
	RunID     string
	Entity    MigrationEntity
	RecordID  int64
	Note      string
	IsError   bool
	CreatedAt time.Time
}
