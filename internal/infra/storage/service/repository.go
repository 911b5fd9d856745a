package service

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

// Repository репозиторий слотовых спецификаций услуг (только чтение)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetSpec возвращает спецификацию услуги вместе со всеми окнами по дням недели
func (r *Repository) GetSpec(ctx context.Context, serviceID int64) (*domain.ServiceSlotSpec, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "slots_needed").
		From("services").
		Where(squirrel.Eq{"id": serviceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpec - build select query: %v", ErrBuildQuery, err)
	}

	var spec domain.ServiceSlotSpec
	var slotsNeeded sql.NullInt64

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&spec.ServiceID,
		&spec.Name,
		&spec.DurationMinutes,
		&slotsNeeded,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpec - scan service: %w", ErrScanRow, err)
	}

	// Немигрированная услуга: EffectiveSlotsNeeded выведет значение из длительности
	if slotsNeeded.Valid {
		spec.SlotsNeeded = int(slotsNeeded.Int64)
	}

	windows, err := r.listWindows(ctx, executor, serviceID)
	if err != nil {
		return nil, err
	}
	spec.Windows = windows

	return &spec, nil
}

func (r *Repository) listWindows(ctx context.Context, executor DBExecutor, serviceID int64) ([]domain.SlotWindow, error) {
	query, args, err := psqlbuilder.Select("id", "service_id", "weekday", "start_slot", "end_slot", "capacity").
		From("service_slot_windows").
		Where(squirrel.Eq{"service_id": serviceID}).
		OrderBy("weekday ASC", "start_slot ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listWindows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listWindows - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]domain.SlotWindow, 0)
	for rows.Next() {
		var w domain.SlotWindow
		var weekday int
		if err := rows.Scan(&w.ID, &w.ServiceID, &weekday, &w.StartSlot, &w.EndSlot, &w.Capacity); err != nil {
			return nil, fmt.Errorf("%w: listWindows - scan row: %w", ErrScanRow, err)
		}
		w.Weekday = time.Weekday(weekday)
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listWindows - rows error: %w", ErrScanRow, err)
	}

	return windows, nil
}
