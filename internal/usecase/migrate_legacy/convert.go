package migrate_legacy

import (
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

// MigrateService переводит длительность услуги в слоты (всегда с округлением вверх).
// Если длительность не кратна 30 минутам, она переписывается и остаётся заметка аудита.
func MigrateService(s domain.LegacyService) (ServiceMigration, error) {
	if s.DurationMinutes <= 0 || s.DurationMinutes > domain.MaxServiceDuration {
		return ServiceMigration{}, fmt.Errorf("%w: service %d has duration %d minutes",
			ErrInvalidLegacyDuration, s.ID, s.DurationMinutes)
	}

	slotsNeeded := slot.DurationToSlots(s.DurationMinutes)
	adjusted := slot.SlotsToDuration(slotsNeeded)

	result := ServiceMigration{
		SlotsNeeded:      slotsNeeded,
		AdjustedDuration: adjusted,
		Rewritten:        adjusted != s.DurationMinutes,
	}
	if result.Rewritten {
		result.AuditNote = fmt.Sprintf("duration rewritten from %d to %d minutes (%d slots)",
			s.DurationMinutes, adjusted, slotsNeeded)
	}

	return result, nil
}

// MigrateAppointment переводит legacy-запись в слотовый диапазон.
// Начало округляется вниз до начала слота, длительность вверх.
// Диапазон, выходящий за полночь, не обрезается: возвращается ErrDayBoundaryOverflow.
func MigrateAppointment(a domain.LegacyAppointment) (AppointmentMigration, error) {
	start, err := slot.TimeToSlotIndex(a.StartTime)
	if err != nil {
		return AppointmentMigration{}, fmt.Errorf("%w: appointment %d start %q: %v",
			ErrUnparseableLegacyTime, a.ID, a.StartTime, err)
	}

	if a.DurationMinutes <= 0 {
		return AppointmentMigration{}, fmt.Errorf("%w: appointment %d has duration %d minutes",
			ErrInvalidLegacyDuration, a.ID, a.DurationMinutes)
	}

	slotsUsed := slot.DurationToSlots(a.DurationMinutes)
	end := start + slotsUsed
	if end > slot.SlotsPerDay {
		return AppointmentMigration{}, fmt.Errorf("%w: appointment %d starts at %s and lasts %d minutes (end slot %d)",
			ErrDayBoundaryOverflow, a.ID, a.StartTime, a.DurationMinutes, end)
	}

	result := AppointmentMigration{StartSlot: start, EndSlot: end, SlotsUsed: slotsUsed}

	if aligned, _ := slot.SlotIndexToTime(start); aligned != a.StartTime {
		result.Notes = append(result.Notes, fmt.Sprintf("start %s aligned down to %s", a.StartTime, aligned))
	}
	if rounded := slot.SlotsToDuration(slotsUsed); rounded != a.DurationMinutes {
		result.Notes = append(result.Notes, fmt.Sprintf("duration %d rounded up to %d minutes", a.DurationMinutes, rounded))
	}

	return result, nil
}

// MigrateStaffAvailability переводит недельное расписание сотрудника в слоты.
// День с отсутствующим или некорректным рабочим временем становится выходным,
// некорректный обед отбрасывается; оба случая сопровождаются заметкой.
func MigrateStaffAvailability(a domain.LegacyStaffAvailability) StaffMigration {
	result := StaffMigration{StaffID: a.StaffID, Days: make([]StaffDayMigration, 0, len(a.Days))}
	for _, day := range a.Days {
		result.Days = append(result.Days, migrateStaffDay(day))
	}
	return result
}

func migrateStaffDay(d domain.LegacyStaffDay) StaffDayMigration {
	off := StaffDayMigration{
		Schedule:     domain.StaffDaySchedule{Weekday: d.Weekday, IsWorking: false},
		WorkingSlots: []int{},
	}

	if !d.IsWorking {
		return off
	}

	if d.StartTime == nil || d.EndTime == nil {
		off.Notes = append(off.Notes, fmt.Sprintf("%s: working hours missing, marked as day off", d.Weekday))
		return off
	}

	start, errStart := slot.TimeToSlotIndex(*d.StartTime)
	end, errEnd := slot.TimeToSlotIndex(*d.EndTime)
	if errStart != nil || errEnd != nil {
		off.Notes = append(off.Notes, fmt.Sprintf("%s: unparseable working hours %q-%q, marked as day off",
			d.Weekday, *d.StartTime, *d.EndTime))
		return off
	}
	if !slot.IsValidSlotRange(start, end) {
		off.Notes = append(off.Notes, fmt.Sprintf("%s: working hours %s-%s are empty or inverted, marked as day off",
			d.Weekday, *d.StartTime, *d.EndTime))
		return off
	}

	result := StaffDayMigration{
		Schedule: domain.StaffDaySchedule{
			Weekday:   d.Weekday,
			IsWorking: true,
			StartSlot: start,
			EndSlot:   end,
		},
		WorkingSlots: slot.Range{Start: start, End: end}.Slots(),
	}

	if aligned, _ := slot.SlotIndexToTime(start); aligned != *d.StartTime {
		result.Notes = append(result.Notes, fmt.Sprintf("%s: start %s aligned down to %s", d.Weekday, *d.StartTime, aligned))
	}
	if aligned, _ := slot.SlotIndexToTime(end); aligned != *d.EndTime {
		result.Notes = append(result.Notes, fmt.Sprintf("%s: end %s aligned down to %s", d.Weekday, *d.EndTime, aligned))
	}

	lunch, note := migrateLunch(d, result.Schedule.WorkingRange())
	if note != "" {
		result.Notes = append(result.Notes, note)
	}
	if lunch != nil {
		result.Schedule.LunchBreakStartSlot = &lunch.Start
		result.Schedule.LunchBreakEndSlot = &lunch.End
	}

	return result
}

// migrateLunch возвращает обед, расширенный до целых слотов, либо nil и причину отказа
func migrateLunch(d domain.LegacyStaffDay, working slot.Range) (*slot.Range, string) {
	if d.LunchStartTime == nil && d.LunchEndTime == nil {
		return nil, ""
	}
	if d.LunchStartTime == nil || d.LunchEndTime == nil {
		return nil, fmt.Sprintf("%s: incomplete lunch break dropped", d.Weekday)
	}

	start, errStart := slot.TimeToSlotIndex(*d.LunchStartTime)
	end, errEnd := slot.TimeToSlotIndex(*d.LunchEndTime)
	if errStart != nil || errEnd != nil {
		return nil, fmt.Sprintf("%s: unparseable lunch break %q-%q dropped", d.Weekday, *d.LunchStartTime, *d.LunchEndTime)
	}

	// Конец обеда округляется вверх, чтобы не отдавать частично занятый слот
	if aligned, _ := slot.SlotIndexToTime(end); aligned != *d.LunchEndTime {
		end++
	}

	lunch := slot.Range{Start: start, End: end}
	if !lunch.Valid() || lunch.Start < working.Start || lunch.End > working.End {
		return nil, fmt.Sprintf("%s: lunch break %s-%s outside working hours dropped", d.Weekday, *d.LunchStartTime, *d.LunchEndTime)
	}

	return &lunch, ""
}
