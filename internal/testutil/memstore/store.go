// Package memstore is an in-memory stand-in for the PostgreSQL repositories and
// transaction manager. It returns the same sentinel errors as the real
// repositories and serializes LockStaffDay per (staff, date) like the
// advisory lock does, so reservation races can be exercised in unit tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	staffRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// Store holds every table the scheduling engine touches.
type Store struct {
	mu sync.Mutex

	staff        map[int64]*domain.StaffSchedule
	services     map[int64]*domain.ServiceSlotSpec
	appointments map[int64]*domain.Appointment
	nextID       int64

	legacyServices     map[int64]domain.LegacyService
	legacyStaff        map[int64]domain.LegacyStaffAvailability
	legacyAppointments map[int64]domain.LegacyAppointment
	migratedStaffDays  map[int64]map[time.Weekday][]int
	audits             []domain.MigrationAudit

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// FailCommit, when set, is returned (as a serialization failure) by the
	// next transaction instead of committing it.
	FailCommit error

	// Clock stamps created/updated timestamps.
	Clock func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		staff:              make(map[int64]*domain.StaffSchedule),
		services:           make(map[int64]*domain.ServiceSlotSpec),
		appointments:       make(map[int64]*domain.Appointment),
		legacyServices:     make(map[int64]domain.LegacyService),
		legacyStaff:        make(map[int64]domain.LegacyStaffAvailability),
		legacyAppointments: make(map[int64]domain.LegacyAppointment),
		migratedStaffDays:  make(map[int64]map[time.Weekday][]int),
		locks:              make(map[string]*sync.Mutex),
		Clock:              time.Now,
	}
}

// PutStaff registers a staff member with a weekly schedule.
func (s *Store) PutStaff(staffID int64, days ...domain.StaffDaySchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := &domain.StaffSchedule{StaffID: staffID, Days: make(map[time.Weekday]domain.StaffDaySchedule)}
	for _, d := range days {
		schedule.Days[d.Weekday] = d
	}
	s.staff[staffID] = schedule
}

// PutService registers a service spec.
func (s *Store) PutService(spec domain.ServiceSlotSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := spec
	cp.Windows = append([]domain.SlotWindow(nil), spec.Windows...)
	s.services[spec.ServiceID] = &cp
}

// PutAppointment inserts an appointment directly, bypassing the guard.
func (s *Store) PutAppointment(a domain.Appointment) *domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		s.nextID++
		a.ID = s.nextID
	} else if a.ID > s.nextID {
		s.nextID = a.ID
	}
	cp := a
	s.appointments[a.ID] = &cp
	return clone(&cp)
}

// Appointments returns a snapshot of every stored appointment ordered by ID.
func (s *Store) Appointments() []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetSchedule implements the staff repository.
func (s *Store) GetSchedule(_ context.Context, staffID int64) (*domain.StaffSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, ok := s.staff[staffID]
	if !ok {
		return nil, staffRepo.ErrStaffNotFound
	}
	days := make(map[time.Weekday]domain.StaffDaySchedule, len(schedule.Days))
	for k, v := range schedule.Days {
		days[k] = v
	}
	return &domain.StaffSchedule{StaffID: staffID, Days: days}, nil
}

// GetSpec implements the service repository.
func (s *Store) GetSpec(_ context.Context, serviceID int64) (*domain.ServiceSlotSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, ok := s.services[serviceID]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	cp := *spec
	cp.Windows = append([]domain.SlotWindow(nil), spec.Windows...)
	return &cp, nil
}

// Create implements the appointment repository.
func (s *Store) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.Clock()
	a.ID = s.nextID
	a.CreatedAt = now
	a.UpdatedAt = now

	stored := clone(a)
	s.appointments[a.ID] = stored

	id := a.ID
	s.onRollback(ctx, func() { delete(s.appointments, id) })

	return a, nil
}

// GetByID implements the appointment repository.
func (s *Store) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return clone(a), nil
}

// ListByStaffAndDate implements the appointment repository.
func (s *Store) ListByStaffAndDate(_ context.Context, filter domain.StaffDayFilter) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Appointment, 0)
	for _, a := range s.appointments {
		if a.StaffID != filter.StaffID || !domain.IsSameDay(a.Date, filter.Date) {
			continue
		}
		if !filter.IncludeInactive && !a.IsActive() {
			continue
		}
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartSlot != out[j].StartSlot {
			return out[i].StartSlot < out[j].StartSlot
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// LockStaffDay blocks until the (staff, date) lock is free and holds it until
// the surrounding transaction ends.
func (s *Store) LockStaffDay(ctx context.Context, staffID int64, date time.Time) error {
	tx, ok := txFromContext(ctx)
	if !ok {
		return appointmentRepo.ErrNotInTransaction
	}

	key := fmt.Sprintf("%d:%s", staffID, date.Format(domain.DateFormat))
	if _, held := tx.held[key]; held {
		return nil
	}

	s.locksMu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	tx.held[key] = lock
	return nil
}

// UpdateStatus implements the appointment repository (compare-and-set).
func (s *Store) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.Status != from {
		return appointmentRepo.ErrStatusConflict
	}

	before := clone(a)
	a.Status = to
	a.UpdatedAt = at
	switch to {
	case domain.StatusCancelled:
		a.CancelledAt = &at
	case domain.StatusCompleted:
		a.CompletedAt = &at
	}

	s.onRollback(ctx, func() { s.appointments[id] = before })
	return nil
}

// onRollback registers an undo step; must be called with s.mu held.
func (s *Store) onRollback(ctx context.Context, undo func()) {
	if tx, ok := txFromContext(ctx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

func clone(a *domain.Appointment) *domain.Appointment {
	cp := *a
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		cp.CancelledAt = &t
	}
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// TxManager runs callbacks in an in-memory transaction with undo-on-error.
type TxManager struct {
	store *Store
}

// TxManager returns a transaction manager bound to the store.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

type txKey struct{}

type tx struct {
	undo []func()
	held map[string]*sync.Mutex
}

func txFromContext(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	t := &tx{held: make(map[string]*sync.Mutex)}
	defer func() {
		for _, lock := range t.held {
			lock.Unlock()
		}
	}()

	err := fn(context.WithValue(ctx, txKey{}, t))

	m.store.mu.Lock()
	if err == nil && m.store.FailCommit != nil {
		err = fmt.Errorf("%w: %v", txmanager.ErrSerializationFailure, m.store.FailCommit)
		m.store.FailCommit = nil
	}
	if err != nil {
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
	}
	m.store.mu.Unlock()

	return err
}
