package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	legacyRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/legacy"
)

// PutLegacyService adds an unmigrated service.
func (s *Store) PutLegacyService(svc domain.LegacyService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacyServices[svc.ID] = svc
}

// PutLegacyStaff adds an unmigrated weekly schedule.
func (s *Store) PutLegacyStaff(a domain.LegacyStaffAvailability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacyStaff[a.StaffID] = a
}

// PutLegacyAppointment adds an unmigrated appointment.
func (s *Store) PutLegacyAppointment(a domain.LegacyAppointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacyAppointments[a.ID] = a
	if a.ID > s.nextID {
		s.nextID = a.ID
	}
}

// Audits returns every audit row written so far.
func (s *Store) Audits() []domain.MigrationAudit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MigrationAudit(nil), s.audits...)
}

// WorkingSlots returns the slot list saved for a migrated staff day.
func (s *Store) WorkingSlots(staffID int64, weekday time.Weekday) ([]int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, ok := s.migratedStaffDays[staffID][weekday]
	return slots, ok
}

func (s *Store) ListUnmigratedServices(_ context.Context, afterID int64, limit int) ([]domain.LegacyService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LegacyService, 0)
	for id, svc := range s.legacyServices {
		if id <= afterID {
			continue
		}
		if _, migrated := s.services[id]; migrated {
			continue
		}
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit), nil
}

func (s *Store) SaveServiceSlots(ctx context.Context, serviceID int64, slotsNeeded, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.legacyServices[serviceID]
	if !ok {
		return legacyRepo.ErrRecordNotFound
	}
	if _, migrated := s.services[serviceID]; migrated {
		return legacyRepo.ErrRecordNotFound
	}

	s.services[serviceID] = &domain.ServiceSlotSpec{
		ServiceID:       serviceID,
		Name:            svc.Name,
		DurationMinutes: durationMinutes,
		SlotsNeeded:     slotsNeeded,
	}
	s.onRollback(ctx, func() { delete(s.services, serviceID) })
	return nil
}

func (s *Store) ListUnmigratedStaffAvailability(_ context.Context, afterStaffID int64, limit int) ([]domain.LegacyStaffAvailability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LegacyStaffAvailability, 0)
	for staffID, legacy := range s.legacyStaff {
		if staffID <= afterStaffID {
			continue
		}
		pending := domain.LegacyStaffAvailability{StaffID: staffID}
		for _, day := range legacy.Days {
			if _, migrated := s.migratedStaffDays[staffID][day.Weekday]; !migrated {
				pending.Days = append(pending.Days, day)
			}
		}
		if len(pending.Days) > 0 {
			out = append(out, pending)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return page(out, limit), nil
}

func (s *Store) SaveStaffDay(ctx context.Context, staffID int64, day domain.StaffDaySchedule, workingSlots []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.legacyStaff[staffID]; !ok {
		return legacyRepo.ErrRecordNotFound
	}
	if _, migrated := s.migratedStaffDays[staffID][day.Weekday]; migrated {
		return legacyRepo.ErrRecordNotFound
	}

	if s.migratedStaffDays[staffID] == nil {
		s.migratedStaffDays[staffID] = make(map[time.Weekday][]int)
	}
	s.migratedStaffDays[staffID][day.Weekday] = append([]int{}, workingSlots...)

	schedule, existed := s.staff[staffID]
	if !existed {
		schedule = &domain.StaffSchedule{StaffID: staffID, Days: make(map[time.Weekday]domain.StaffDaySchedule)}
		s.staff[staffID] = schedule
	}
	schedule.Days[day.Weekday] = day

	s.onRollback(ctx, func() {
		delete(s.migratedStaffDays[staffID], day.Weekday)
		delete(schedule.Days, day.Weekday)
		if !existed {
			delete(s.staff, staffID)
		}
	})
	return nil
}

func (s *Store) ListUnmigratedAppointments(_ context.Context, afterID int64, limit int) ([]domain.LegacyAppointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LegacyAppointment, 0)
	for id, a := range s.legacyAppointments {
		if id <= afterID {
			continue
		}
		if _, migrated := s.appointments[id]; migrated {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit), nil
}

func (s *Store) SaveAppointmentSlots(ctx context.Context, appointmentID int64, startSlot, endSlot, slotsUsed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	legacy, ok := s.legacyAppointments[appointmentID]
	if !ok {
		return legacyRepo.ErrRecordNotFound
	}
	if _, migrated := s.appointments[appointmentID]; migrated {
		return legacyRepo.ErrRecordNotFound
	}

	s.appointments[appointmentID] = &domain.Appointment{
		ID:        appointmentID,
		StaffID:   legacy.StaffID,
		ServiceID: legacy.ServiceID,
		Date:      legacy.Date,
		StartSlot: startSlot,
		EndSlot:   endSlot,
		SlotsUsed: slotsUsed,
		Status:    domain.AppointmentStatus(legacy.Status),
	}
	s.onRollback(ctx, func() { delete(s.appointments, appointmentID) })
	return nil
}

func (s *Store) WriteAudit(ctx context.Context, audit domain.MigrationAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	audit.CreatedAt = s.Clock()
	s.audits = append(s.audits, audit)

	n := len(s.audits) - 1
	s.onRollback(ctx, func() { s.audits = s.audits[:n] })
	return nil
}

func page[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
