package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	staffRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// UseCase расчёт свободных слотов сотрудника для услуги на дату.
// Только чтение; результат носит рекомендательный характер, окончательную
// проверку выполняет резервирование.
type UseCase struct {
	staffRepo       StaffRepository
	serviceRepo     ServiceRepository
	appointmentRepo AppointmentRepository
	settings        Settings
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	staffRepo StaffRepository,
	serviceRepo ServiceRepository,
	appointmentRepo AppointmentRepository,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		staffRepo:       staffRepo,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		settings:        settings,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: staff=%d, service=%d, date=%s",
		req.StaffID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Приводим дату и текущее время к часовому поясу бизнеса
	now := uc.timeProvider.Now().In(uc.settings.Location)
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.settings.Location)

	// 3. Получаем расписание сотрудника
	schedule, err := uc.staffRepo.GetSchedule(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			uc.logger.Warn("GetAvailability: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailability: failed to get schedule for staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff schedule: %v", ErrInternal, err)
	}

	// 4. Получаем слотовую спецификацию услуги
	spec, err := uc.serviceRepo.GetSpec(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	resp := &Response{
		StaffID:     req.StaffID,
		ServiceID:   req.ServiceID,
		Date:        date,
		SlotsNeeded: spec.EffectiveSlotsNeeded(),
		AllSlots:    []domain.SlotAvailability{},
		FreeRanges:  []FreeRange{},
	}

	// 5. Прошедшая дата: бронировать нечего
	if domain.IsDateInPast(date, now) {
		uc.logger.Info("GetAvailability: date %s is in the past", date.Format(domain.DateFormat))
		return resp, nil
	}

	// 6. Ограничение на бронирование заранее
	if domain.IsBeyondAdvanceLimit(date, now, uc.settings.AdvanceBookingDays) {
		uc.logger.Warn("GetAvailability: date %s is beyond %d days", date.Format(domain.DateFormat), uc.settings.AdvanceBookingDays)
		return nil, fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, uc.settings.AdvanceBookingDays)
	}

	// 7. Выходной день сотрудника: пустой результат
	day := schedule.DayFor(date)
	if !day.HasWorkingHours() {
		uc.logger.Info("GetAvailability: staff id=%d does not work on %s", req.StaffID, date.Weekday())
		return resp, nil
	}

	// 8. Получаем активные записи на дату (всегда свежие, без кэша)
	appointments, err := uc.appointmentRepo.ListByStaffAndDate(ctx, domain.StaffDayFilter{
		StaffID: req.StaffID,
		Date:    date,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 9. Строим сетку дня и считаем диапазоны
	notBefore := domain.FirstBookableSlot(date, now, uc.settings.MinBookingNoticeMinutes)
	grid := domain.NewDayGrid(day, spec.WindowsFor(date.Weekday()), appointments, notBefore)

	resp.AllSlots = grid.Slots()
	for _, r := range grid.FreeRanges(resp.SlotsNeeded) {
		resp.FreeRanges = append(resp.FreeRanges, toFreeRange(r))
	}

	uc.logger.Info("GetAvailability: staff=%d, service=%d, date=%s: %d open slots, %d free ranges of %d slots",
		req.StaffID, req.ServiceID, date.Format(domain.DateFormat), len(resp.AllSlots), len(resp.FreeRanges), resp.SlotsNeeded)

	return resp, nil
}

func toFreeRange(r slot.Range) FreeRange {
	start, _ := slot.SlotIndexToTime(r.Start)
	end, _ := slot.SlotEndTime(r.End - 1)
	return FreeRange{Range: r, StartTime: start, EndTime: end}
}
