package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository читает немигрированные legacy-записи и сохраняет их слотовое представление.
// Используется только пакетной миграцией.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр legacy-репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListUnmigratedServices возвращает услуги без slots_needed с id > afterID
func (r *Repository) ListUnmigratedServices(ctx context.Context, afterID int64, limit int) ([]domain.LegacyService, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes").
		From("services").
		Where("slots_needed IS NULL").
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedServices - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]domain.LegacyService, 0)
	for rows.Next() {
		var s domain.LegacyService
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes); err != nil {
			return nil, fmt.Errorf("%w: ListUnmigratedServices - scan row: %w", ErrScanRow, err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedServices - rows error: %w", ErrScanRow, err)
	}

	return services, nil
}

// SaveServiceSlots записывает slots_needed и (возможно скорректированную) длительность услуги
func (r *Repository) SaveServiceSlots(ctx context.Context, serviceID int64, slotsNeeded, durationMinutes int) error {
	query, args, err := psqlbuilder.Update("services").
		Set("slots_needed", slotsNeeded).
		Set("duration_minutes", durationMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": serviceID}).
		Where("slots_needed IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveServiceSlots - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, "SaveServiceSlots", query, args)
}

// ListUnmigratedStaffAvailability возвращает расписания сотрудников с id > afterStaffID,
// у которых есть хотя бы один немигрированный день
func (r *Repository) ListUnmigratedStaffAvailability(ctx context.Context, afterStaffID int64, limit int) ([]domain.LegacyStaffAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"staff_id",
		"weekday",
		"is_working",
		"start_time",
		"end_time",
		"lunch_start_time",
		"lunch_end_time",
	).
		From("staff_availability").
		Where(squirrel.Expr(
			"staff_id IN (SELECT DISTINCT staff_id FROM staff_availability WHERE migrated_at IS NULL AND staff_id > ? ORDER BY staff_id LIMIT ?)",
			afterStaffID, limit,
		)).
		Where("migrated_at IS NULL").
		OrderBy("staff_id ASC", "weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedStaffAvailability - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedStaffAvailability - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]domain.LegacyStaffAvailability, 0)
	for rows.Next() {
		var (
			staffID int64
			weekday int
			day     domain.LegacyStaffDay
			start   sql.NullString
			end     sql.NullString
			lStart  sql.NullString
			lEnd    sql.NullString
		)
		if err := rows.Scan(&staffID, &weekday, &day.IsWorking, &start, &end, &lStart, &lEnd); err != nil {
			return nil, fmt.Errorf("%w: ListUnmigratedStaffAvailability - scan row: %w", ErrScanRow, err)
		}
		day.Weekday = time.Weekday(weekday)
		day.StartTime = nullStringPtr(start)
		day.EndTime = nullStringPtr(end)
		day.LunchStartTime = nullStringPtr(lStart)
		day.LunchEndTime = nullStringPtr(lEnd)

		if n := len(result); n == 0 || result[n-1].StaffID != staffID {
			result = append(result, domain.LegacyStaffAvailability{StaffID: staffID})
		}
		last := &result[len(result)-1]
		last.Days = append(last.Days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedStaffAvailability - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}

// SaveStaffDay записывает слотовое представление одного дня недели сотрудника
func (r *Repository) SaveStaffDay(ctx context.Context, staffID int64, day domain.StaffDaySchedule, workingSlots []int) error {
	builder := psqlbuilder.Update("staff_availability").
		Set("is_working", day.IsWorking).
		Set("lunch_break_start_slot", day.LunchBreakStartSlot).
		Set("lunch_break_end_slot", day.LunchBreakEndSlot).
		Set("available_slots", pq.Array(toInt64s(workingSlots))).
		Set("migrated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"staff_id": staffID, "weekday": int(day.Weekday)}).
		Where("migrated_at IS NULL")

	if day.IsWorking {
		builder = builder.Set("start_slot", day.StartSlot).Set("end_slot", day.EndSlot)
	} else {
		builder = builder.Set("start_slot", nil).Set("end_slot", nil)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveStaffDay - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, "SaveStaffDay", query, args)
}

// ListUnmigratedAppointments возвращает записи без start_slot с id > afterID
func (r *Repository) ListUnmigratedAppointments(ctx context.Context, afterID int64, limit int) ([]domain.LegacyAppointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"staff_id",
		"service_id",
		"appointment_date",
		"COALESCE(start_time, '')",
		"COALESCE(duration_minutes, 0)",
		"status",
	).
		From("appointments").
		Where("start_slot IS NULL").
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedAppointments - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedAppointments - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]domain.LegacyAppointment, 0)
	for rows.Next() {
		var a domain.LegacyAppointment
		if err := rows.Scan(&a.ID, &a.StaffID, &a.ServiceID, &a.Date, &a.StartTime, &a.DurationMinutes, &a.Status); err != nil {
			return nil, fmt.Errorf("%w: ListUnmigratedAppointments - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListUnmigratedAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}

// SaveAppointmentSlots записывает слотовый диапазон legacy-записи
func (r *Repository) SaveAppointmentSlots(ctx context.Context, appointmentID int64, startSlot, endSlot, slotsUsed int) error {
	query, args, err := psqlbuilder.Update("appointments").
		Set("start_slot", startSlot).
		Set("end_slot", endSlot).
		Set("slots_used", slotsUsed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": appointmentID}).
		Where("start_slot IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveAppointmentSlots - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, "SaveAppointmentSlots", query, args)
}

// WriteAudit сохраняет заметку аудита миграции
func (r *Repository) WriteAudit(ctx context.Context, audit domain.MigrationAudit) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("migration_audit").
		Columns("run_id", "entity", "record_id", "note", "is_error").
		Values(audit.RunID, string(audit.Entity), audit.RecordID, audit.Note, audit.IsError).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: WriteAudit - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: WriteAudit - execute insert: %w", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) execOne(ctx context.Context, op string, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func toInt64s(values []int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
