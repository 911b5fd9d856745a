package get_availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailability "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	StaffID     int64       `json:"staffId"`
	ServiceID   int64       `json:"serviceId"`
	Date        string      `json:"date"`
	SlotsNeeded int         `json:"slotsNeeded"`
	AllSlots    []SlotInfo  `json:"allSlots"`
	FreeRanges  []FreeRange `json:"freeRanges"`
}

// SlotInfo состояние одного слота
type SlotInfo struct {
	SlotIndex int    `json:"slotIndex"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
	Full      bool   `json:"full"`
	// Процент занятости 0-100, для групповых занятий
	OccupancyRate float64 `json:"occupancyRate"`
}

// FreeRange диапазон, доступный для резервирования
type FreeRange struct {
	StartSlot int    `json:"startSlot"`
	EndSlot   int    `json:"endSlot"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(staffID, serviceID int64, dateStr string) (*getAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailability.Request{
		StaffID:   staffID,
		ServiceID: serviceID,
		Date:      date,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotInfo, len(resp.AllSlots))
	for i, s := range resp.AllSlots {
		slots[i] = SlotInfo{
			SlotIndex: s.SlotIndex,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Capacity:  s.Capacity,
			Booked:    s.Booked,
			Available: s.Available,
			Full:      s.IsFull(),

			OccupancyRate: s.OccupancyRate(),
		}
	}

	ranges := make([]FreeRange, len(resp.FreeRanges))
	for i, r := range resp.FreeRanges {
		ranges[i] = FreeRange{
			StartSlot: r.Range.Start,
			EndSlot:   r.Range.End,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		}
	}

	return &AvailabilityResponse{
		StaffID:     resp.StaffID,
		ServiceID:   resp.ServiceID,
		Date:        resp.Date.Format(domain.DateFormat),
		SlotsNeeded: resp.SlotsNeeded,
		AllSlots:    slots,
		FreeRanges:  ranges,
	}
}
