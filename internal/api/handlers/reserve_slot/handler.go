package reserve_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	reserveSlot "github.com/m04kA/SMC-SchedulingService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgMissingStart       = "нужно указать startSlot или startTime"
	msgAmbiguousStart     = "нужно указать только одно из startSlot и startTime"
	msgMisalignedStart    = "время начала должно совпадать с границей 30-минутного слота"
	msgInvalidSlot        = "некорректный слот: диапазон должен помещаться в сутки"
	msgInvalidInput       = "некорректные данные запроса"
	msgStaffNotFound      = "сотрудник не найден"
	msgServiceNotFound    = "услуга не найдена"
	msgSlotInPast         = "выбранное время уже прошло"
	msgDateTooFar         = "дата слишком далеко в будущем"
	msgSlotUnavailable    = "выбранный диапазон слотов недоступен"
	msgReservationRace    = "диапазон занят параллельным запросом, повторите попытку"
)

type Handler struct {
	useCase ReserveSlotUseCase
	logger  Logger
}

func NewHandler(useCase ReserveSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ReserveSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		switch {
		case errors.Is(err, errInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)
		case errors.Is(err, errMissingStart):
			handlers.RespondBadRequest(w, msgMissingStart)
		case errors.Is(err, errAmbiguousStart):
			handlers.RespondBadRequest(w, msgAmbiguousStart)
		case errors.Is(err, errMisalignedStart):
			handlers.RespondBadRequest(w, msgMisalignedStart)
		default:
			handlers.RespondBadRequest(w, msgInvalidTime)
		}
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var conflict *reserveSlot.ConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("POST /appointments - Conflict: staff_id=%d, date=%s, start_slot=%d, reason=%s",
				req.StaffID, req.Date, useCaseReq.StartSlot, conflict.Reason)
			msg := msgSlotUnavailable
			if conflict.Reason == reserveSlot.ReasonReservationRace {
				msg = msgReservationRace
			}
			handlers.RespondConflict(w, msg, string(conflict.Reason), conflict.ConflictingSlots)

		case errors.Is(err, reserveSlot.ErrStaffNotFound):
			h.logger.Warn("POST /appointments - Staff not found: staff_id=%d", req.StaffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, reserveSlot.ErrServiceNotFound):
			h.logger.Warn("POST /appointments - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, reserveSlot.ErrSlotInPast):
			h.logger.Warn("POST /appointments - Slot in the past: staff_id=%d, date=%s, start_slot=%d",
				req.StaffID, req.Date, useCaseReq.StartSlot)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, reserveSlot.ErrDateTooFarInFuture):
			h.logger.Warn("POST /appointments - Date too far in future: staff_id=%d, date=%s", req.StaffID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, slot.ErrSlotOutOfRange), errors.Is(err, slot.ErrInvalidSlotRange):
			h.logger.Warn("POST /appointments - Invalid slot range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, reserveSlot.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to reserve: staff_id=%d, service_id=%d, error=%v",
				req.StaffID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment_id=%d, staff_id=%d, client_id=%d",
		result.AppointmentID, result.StaffID, result.ClientID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
