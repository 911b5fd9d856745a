package migrate_legacy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const defaultBatchSize = 500

// UseCase пакетная миграция legacy-данных в слотовое представление.
// Запускается офлайн; каждая запись мигрирует в собственной транзакции,
// ошибка одной записи не останавливает прогон.
type UseCase struct {
	legacyRepo LegacyRepository
	txManager  TransactionManager
	settings   Settings
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(legacyRepo LegacyRepository, txManager TransactionManager, settings Settings, logger Logger) *UseCase {
	if settings.BatchSize <= 0 {
		settings.BatchSize = defaultBatchSize
	}
	return &UseCase{
		legacyRepo: legacyRepo,
		txManager:  txManager,
		settings:   settings,
		logger:     logger,
	}
}

// run состояние одного прогона
type run struct {
	id      string
	summary *Summary
}

// Execute мигрирует услуги, затем расписания сотрудников, затем записи.
// Выбираются только немигрированные строки, поэтому повторный запуск ничего не меняет.
func (uc *UseCase) Execute(ctx context.Context) (*Summary, error) {
	r := &run{id: uuid.NewString()}
	r.summary = &Summary{RunID: r.id, DryRun: uc.settings.DryRun, Errors: []RecordError{}}

	uc.logger.Info("MigrateLegacy: run=%s started (batch=%d, dryRun=%t)", r.id, uc.settings.BatchSize, uc.settings.DryRun)

	// 1. Услуги
	if err := uc.migrateServices(ctx, r); err != nil {
		return r.summary, err
	}

	// 2. Расписания сотрудников
	if err := uc.migrateStaff(ctx, r); err != nil {
		return r.summary, err
	}

	// 3. Записи
	if err := uc.migrateAppointments(ctx, r); err != nil {
		return r.summary, err
	}

	uc.logger.Info("MigrateLegacy: run=%s finished: processed=%d, migrated=%d, errored=%d, notes=%d",
		r.id, r.summary.Processed, r.summary.Migrated, r.summary.Errored, r.summary.Notes)

	return r.summary, nil
}

func (uc *UseCase) migrateServices(ctx context.Context, r *run) error {
	var afterID int64
	for {
		services, err := uc.legacyRepo.ListUnmigratedServices(ctx, afterID, uc.settings.BatchSize)
		if err != nil {
			uc.logger.Error("MigrateLegacy: failed to list services: %v", err)
			return fmt.Errorf("%w: failed to list services: %v", ErrInternal, err)
		}
		if len(services) == 0 {
			return nil
		}

		for _, s := range services {
			if err := ctx.Err(); err != nil {
				return err
			}
			afterID = s.ID
			r.summary.Processed++

			converted, err := MigrateService(s)
			if err != nil {
				uc.recordError(ctx, r, domain.EntityService, s.ID, err)
				continue
			}

			var notes []string
			if converted.AuditNote != "" {
				notes = append(notes, converted.AuditNote)
			}

			err = uc.commit(ctx, r, domain.EntityService, s.ID, notes, func(txCtx context.Context) error {
				return uc.legacyRepo.SaveServiceSlots(txCtx, s.ID, converted.SlotsNeeded, converted.AdjustedDuration)
			})
			if err != nil {
				uc.recordError(ctx, r, domain.EntityService, s.ID, err)
				continue
			}
			r.summary.Migrated++
		}
	}
}

func (uc *UseCase) migrateStaff(ctx context.Context, r *run) error {
	var afterID int64
	for {
		batch, err := uc.legacyRepo.ListUnmigratedStaffAvailability(ctx, afterID, uc.settings.BatchSize)
		if err != nil {
			uc.logger.Error("MigrateLegacy: failed to list staff availability: %v", err)
			return fmt.Errorf("%w: failed to list staff availability: %v", ErrInternal, err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, legacy := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			afterID = legacy.StaffID
			r.summary.Processed++

			converted := MigrateStaffAvailability(legacy)

			var notes []string
			for _, day := range converted.Days {
				notes = append(notes, day.Notes...)
			}

			err := uc.commit(ctx, r, domain.EntityStaffAvailability, legacy.StaffID, notes, func(txCtx context.Context) error {
				for _, day := range converted.Days {
					if err := uc.legacyRepo.SaveStaffDay(txCtx, legacy.StaffID, day.Schedule, day.WorkingSlots); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				uc.recordError(ctx, r, domain.EntityStaffAvailability, legacy.StaffID, err)
				continue
			}
			r.summary.Migrated++
		}
	}
}

func (uc *UseCase) migrateAppointments(ctx context.Context, r *run) error {
	var afterID int64
	for {
		appointments, err := uc.legacyRepo.ListUnmigratedAppointments(ctx, afterID, uc.settings.BatchSize)
		if err != nil {
			uc.logger.Error("MigrateLegacy: failed to list appointments: %v", err)
			return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
		}
		if len(appointments) == 0 {
			return nil
		}

		for _, a := range appointments {
			if err := ctx.Err(); err != nil {
				return err
			}
			afterID = a.ID
			r.summary.Processed++

			converted, err := MigrateAppointment(a)
			if err != nil {
				uc.recordError(ctx, r, domain.EntityAppointment, a.ID, err)
				continue
			}

			err = uc.commit(ctx, r, domain.EntityAppointment, a.ID, converted.Notes, func(txCtx context.Context) error {
				return uc.legacyRepo.SaveAppointmentSlots(txCtx, a.ID, converted.StartSlot, converted.EndSlot, converted.SlotsUsed)
			})
			if err != nil {
				uc.recordError(ctx, r, domain.EntityAppointment, a.ID, err)
				continue
			}
			r.summary.Migrated++
		}
	}
}

// commit сохраняет запись и её заметки аудита в одной транзакции
func (uc *UseCase) commit(
	ctx context.Context,
	r *run,
	entity domain.MigrationEntity,
	recordID int64,
	notes []string,
	save func(txCtx context.Context) error,
) error {
	if uc.settings.DryRun {
		r.summary.Notes += len(notes)
		return nil
	}

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := save(txCtx); err != nil {
			return err
		}
		for _, note := range notes {
			audit := domain.MigrationAudit{RunID: r.id, Entity: entity, RecordID: recordID, Note: note}
			if err := uc.legacyRepo.WriteAudit(txCtx, audit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s %d: %v", ErrInternal, entity, recordID, err)
	}

	r.summary.Notes += len(notes)
	return nil
}

// recordError учитывает ошибку записи и сохраняет её в аудит (вне транзакции записи)
func (uc *UseCase) recordError(ctx context.Context, r *run, entity domain.MigrationEntity, recordID int64, err error) {
	uc.logger.Warn("MigrateLegacy: run=%s %s id=%d not migrated: %v", r.id, entity, recordID, err)

	r.summary.Errored++
	r.summary.Errors = append(r.summary.Errors, RecordError{Entity: entity, RecordID: recordID, Err: err})

	if uc.settings.DryRun {
		return
	}

	audit := domain.MigrationAudit{RunID: r.id, Entity: entity, RecordID: recordID, Note: err.Error(), IsError: true}
	if auditErr := uc.legacyRepo.WriteAudit(ctx, audit); auditErr != nil {
		uc.logger.Error("MigrateLegacy: failed to write audit for %s id=%d: %v", entity, recordID, auditErr)
	}
}
