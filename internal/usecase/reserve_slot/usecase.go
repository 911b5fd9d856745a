package reserve_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	staffRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/availabilitybus"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// UseCase авторитетное резервирование диапазона слотов.
// Проверка занятости и вставка выполняются под advisory-блокировкой
// (сотрудник, дата) внутри сериализуемой транзакции.
type UseCase struct {
	staffRepo       StaffRepository
	serviceRepo     ServiceRepository
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	notifier        AvailabilityNotifier
	metrics         MetricsRecorder
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// notifier и metrics могут быть nil.
func NewUseCase(
	staffRepo StaffRepository,
	serviceRepo ServiceRepository,
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	notifier AvailabilityNotifier,
	metricsRecorder MetricsRecorder,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if metricsRecorder == nil {
		metricsRecorder = noopMetrics{}
	}
	return &UseCase{
		staffRepo:       staffRepo,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		notifier:        notifier,
		metrics:         metricsRecorder,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case резервирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveSlot: staff=%d, service=%d, client=%d, date=%s, startSlot=%d",
		req.StaffID, req.ServiceID, req.ClientID, req.Date.Format(domain.DateFormat), req.StartSlot)

	resp, err := uc.execute(ctx, req)
	uc.metrics.IncReservation(outcome(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Приводим дату и текущее время к часовому поясу бизнеса
	now := uc.timeProvider.Now().In(uc.settings.Location)
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.settings.Location)

	// 3. Получаем расписание сотрудника
	schedule, err := uc.staffRepo.GetSchedule(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			uc.logger.Warn("ReserveSlot: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("ReserveSlot: failed to get schedule for staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff schedule: %v", ErrInternal, err)
	}

	// 4. Получаем слотовую спецификацию услуги
	spec, err := uc.serviceRepo.GetSpec(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("ReserveSlot: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("ReserveSlot: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Диапазон должен целиком помещаться в сутки
	requested, err := slot.NewRange(req.StartSlot, spec.EffectiveSlotsNeeded())
	if err != nil {
		uc.logger.Warn("ReserveSlot: invalid range: %v", err)
		return nil, err
	}

	// 6. Проверка времени: прошлое и горизонт бронирования
	notBefore := domain.FirstBookableSlot(date, now, uc.settings.MinBookingNoticeMinutes)
	if requested.Start < notBefore {
		uc.logger.Warn("ReserveSlot: range %s on %s starts before first bookable slot %d",
			requested, date.Format(domain.DateFormat), notBefore)
		return nil, fmt.Errorf("%w: %s on %s", ErrSlotInPast, requested, date.Format(domain.DateFormat))
	}
	if domain.IsBeyondAdvanceLimit(date, now, uc.settings.AdvanceBookingDays) {
		uc.logger.Warn("ReserveSlot: date %s is beyond %d days", date.Format(domain.DateFormat), uc.settings.AdvanceBookingDays)
		return nil, fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, uc.settings.AdvanceBookingDays)
	}

	day := schedule.DayFor(date)
	windows := spec.WindowsFor(date.Weekday())

	var created *domain.Appointment

	// 7. Проверка и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Единая точка сериализации для (сотрудник, дата)
		if err := uc.appointmentRepo.LockStaffDay(txCtx, req.StaffID, date); err != nil {
			return fmt.Errorf("%w: failed to lock staff day: %w", ErrInternal, err)
		}

		// 7.2. Занятость читается заново в момент вызова
		appointments, err := uc.appointmentRepo.ListByStaffAndDate(txCtx, domain.StaffDayFilter{
			StaffID: req.StaffID,
			Date:    date,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}

		// 7.3. Те же правила, что и при расчёте доступности
		grid := domain.NewDayGrid(day, windows, appointments, notBefore)
		if conflicts := grid.Conflicts(requested); len(conflicts) > 0 {
			return &ConflictError{Reason: ReasonSlotUnavailable, ConflictingSlots: conflicts}
		}

		// 7.4. Создаём запись в статусе pending
		appointment := &domain.Appointment{
			Reference: uuid.New(),
			StaffID:   req.StaffID,
			ServiceID: req.ServiceID,
			ClientID:  req.ClientID,
			Date:      date,
			StartSlot: requested.Start,
			EndSlot:   requested.End,
			SlotsUsed: requested.Len(),
			Status:    domain.StatusPending,
		}

		created, err = uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			uc.logger.Warn("ReserveSlot: staff=%d date=%s range %s unavailable, conflicting slots %v",
				req.StaffID, date.Format(domain.DateFormat), requested, conflict.ConflictingSlots)
			return nil, conflict
		case errors.Is(err, txmanager.ErrSerializationFailure):
			uc.logger.Warn("ReserveSlot: staff=%d date=%s range %s lost a concurrent reservation: %v",
				req.StaffID, date.Format(domain.DateFormat), requested, err)
			return nil, &ConflictError{Reason: ReasonReservationRace, Err: err}
		case errors.Is(err, ErrInternal):
			uc.logger.Error("ReserveSlot: %v", err)
			return nil, err
		default:
			uc.logger.Error("ReserveSlot: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("ReserveSlot: created appointment id=%d ref=%s staff=%d date=%s range %s",
		created.ID, created.Reference, created.StaffID, date.Format(domain.DateFormat), created.Range())

	// 8. Сообщаем внешним кэшам об изменении
	uc.notifier.NotifyChanged(ctx, created.StaffID, date, availabilitybus.ReasonReserved)

	startTime, _ := slot.SlotIndexToTime(created.StartSlot)
	endTime, _ := slot.SlotEndTime(created.EndSlot - 1)

	return &Response{
		AppointmentID: created.ID,
		Reference:     created.Reference,
		StaffID:       created.StaffID,
		ServiceID:     created.ServiceID,
		ClientID:      created.ClientID,
		Date:          date,
		Range:         created.Range(),
		StartTime:     startTime,
		EndTime:       endTime,
		Status:        string(created.Status),
		CreatedAt:     created.CreatedAt,
	}, nil
}

func outcome(err error) string {
	var conflict *ConflictError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &conflict) && conflict.Reason == ReasonReservationRace:
		return metrics.OutcomeReservationRace
	case errors.As(err, &conflict):
		return metrics.OutcomeSlotUnavailable
	case errors.Is(err, ErrInternal):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
