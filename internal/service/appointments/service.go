package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/availabilitybus"
	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей: pending -> completed | cancelled
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	notifier        AvailabilityNotifier
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	notifier AvailabilityNotifier,
	logger Logger,
) *Service {
	if notifier == nil {
		notifier = availabilitybus.Noop{}
	}
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	if id <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appointment), nil
}

// ListStaffDay получает записи сотрудника на дату в порядке начала.
// Отменённые записи включаются только при includeInactive.
func (s *Service) ListStaffDay(ctx context.Context, staffID int64, date time.Time, includeInactive bool) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListStaffDay: staff=%d, date=%s, includeInactive=%t", staffID, date.Format(domain.DateFormat), includeInactive)

	if staffID <= 0 {
		return nil, fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.ListByStaffAndDate(ctx, domain.StaffDayFilter{
		StaffID:         staffID,
		Date:            date,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		s.logger.Error("ListStaffDay: repository error for staff=%d: %v", staffID, err)
		return nil, fmt.Errorf("%w: ListStaffDay - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListStaffDay: fetched %d appointments for staff=%d", len(list), staffID)
	return models.FromDomainAppointmentList(staffID, date, list), nil
}

// Cancel отменяет запись. Слоты освобождаются в момент фиксации транзакции.
func (s *Service) Cancel(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Cancel", id, domain.StatusCancelled, availabilitybus.ReasonCancelled)
}

// Complete отмечает запись выполненной
func (s *Service) Complete(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, "Complete", id, domain.StatusCompleted, availabilitybus.ReasonCompleted)
}

// transition переводит запись в статус to.
// Обновление условное (compare-and-set по текущему статусу), поэтому из двух
// конкурентных переходов побеждает только один.
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	to domain.AppointmentStatus,
	reason string,
) (*models.AppointmentResponse, error) {
	s.logger.Info("%s: appointment id=%d -> %s", op, id, to)

	if id <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	var updated *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Читаем текущее состояние (FOR UPDATE внутри транзакции)
		appointment, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		// 2. Проверяем допустимость перехода
		if !appointment.Status.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, to)
		}

		// 3. Условное обновление статуса
		now := s.timeProvider.Now()
		if err := s.appointmentRepo.UpdateStatus(txCtx, id, appointment.Status, to, now); err != nil {
			return err
		}

		appointment.Status = to
		appointment.UpdatedAt = now
		switch to {
		case domain.StatusCancelled:
			appointment.CancelledAt = &now
		case domain.StatusCompleted:
			appointment.CompletedAt = &now
		}
		updated = appointment
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		case errors.Is(err, ErrInvalidTransition):
			s.logger.Warn("%s: appointment id=%d: %v", op, id, err)
			return nil, err
		case errors.Is(err, appointmentRepo.ErrStatusConflict):
			s.logger.Warn("%s: appointment id=%d changed status concurrently", op, id)
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		default:
			s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}
	}

	s.logger.Info("%s: appointment id=%d is now %s", op, id, to)

	s.notifier.NotifyChanged(ctx, updated.StaffID, updated.Date, reason)

	return models.FromDomainAppointment(updated), nil
}
