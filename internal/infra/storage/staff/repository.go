package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий рабочих расписаний сотрудников (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория сотрудников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetSchedule возвращает недельное расписание сотрудника в слотах.
// Учитываются только мигрированные дни; остальные считаются выходными.
func (r *Repository) GetSchedule(ctx context.Context, staffID int64) (*domain.StaffSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if err := r.ensureExists(ctx, executor, staffID); err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Select(
		"weekday",
		"is_working",
		"start_slot",
		"end_slot",
		"lunch_break_start_slot",
		"lunch_break_end_slot",
	).
		From("staff_availability").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where("migrated_at IS NOT NULL").
		OrderBy("weekday ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	schedule := &domain.StaffSchedule{
		StaffID: staffID,
		Days:    make(map[time.Weekday]domain.StaffDaySchedule),
	}

	for rows.Next() {
		var (
			weekday              int
			isWorking            bool
			startSlot, endSlot   sql.NullInt64
			lunchStart, lunchEnd sql.NullInt64
		)
		if err := rows.Scan(&weekday, &isWorking, &startSlot, &endSlot, &lunchStart, &lunchEnd); err != nil {
			return nil, fmt.Errorf("%w: GetSchedule - scan row: %w", ErrScanRow, err)
		}

		day := domain.StaffDaySchedule{
			Weekday:             time.Weekday(weekday),
			IsWorking:           isWorking && startSlot.Valid && endSlot.Valid,
			StartSlot:           int(startSlot.Int64),
			EndSlot:             int(endSlot.Int64),
			LunchBreakStartSlot: nullIntPtr(lunchStart),
			LunchBreakEndSlot:   nullIntPtr(lunchEnd),
		}
		schedule.Days[day.Weekday] = day
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetSchedule - rows error: %w", ErrScanRow, err)
	}

	return schedule, nil
}

func (r *Repository) ensureExists(ctx context.Context, executor DBExecutor, staffID int64) error {
	query, args, err := psqlbuilder.Select("id").
		From("staff").
		Where(squirrel.Eq{"id": staffID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ensureExists - build select query: %v", ErrBuildQuery, err)
	}

	var id int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaffNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: ensureExists - scan staff: %w", ErrScanRow, err)
	}
	return nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
