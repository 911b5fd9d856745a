package reserve_slot

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.StaffID <= 0 {
		return fmt.Errorf("%w: staffID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if !slot.IsValidIndex(req.StartSlot) {
		return fmt.Errorf("%w: startSlot %d", slot.ErrSlotOutOfRange, req.StartSlot)
	}

	return nil
}
