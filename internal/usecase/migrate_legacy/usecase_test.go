package migrate_legacy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func seedLegacy(store *memstore.Store) {
	store.PutLegacyService(domain.LegacyService{ID: 1, Name: "Haircut", DurationMinutes: 45})
	store.PutLegacyService(domain.LegacyService{ID: 2, Name: "Coloring", DurationMinutes: 120})
	store.PutLegacyService(domain.LegacyService{ID: 3, Name: "Broken", DurationMinutes: 0})

	store.PutLegacyStaff(domain.LegacyStaffAvailability{
		StaffID: 10,
		Days: []domain.LegacyStaffDay{
			{Weekday: time.Monday, IsWorking: true, StartTime: ptr.Ptr("09:00"), EndTime: ptr.Ptr("18:00")},
			{Weekday: time.Tuesday, IsWorking: true},
		},
	})

	date := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	store.PutLegacyAppointment(domain.LegacyAppointment{ID: 100, StaffID: 10, ServiceID: 1, Date: date, StartTime: "09:00", DurationMinutes: 45, Status: "pending"})
	store.PutLegacyAppointment(domain.LegacyAppointment{ID: 101, StaffID: 10, ServiceID: 2, Date: date, StartTime: "23:00", DurationMinutes: 120, Status: "pending"})
	store.PutLegacyAppointment(domain.LegacyAppointment{ID: 102, StaffID: 10, ServiceID: 2, Date: date, StartTime: "late", DurationMinutes: 30, Status: "completed"})
}

func TestExecute_MigratesAndReportsErrors(t *testing.T) {
	store := memstore.New()
	seedLegacy(store)
	uc := NewUseCase(store, store.TxManager(), Settings{BatchSize: 2}, logger.NewNop())

	summary, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 7, summary.Processed)
	assert.Equal(t, 4, summary.Migrated)
	assert.Equal(t, 3, summary.Errored)

	errored := map[int64]error{}
	for _, e := range summary.Errors {
		errored[e.RecordID] = e.Err
	}
	assert.ErrorIs(t, errored[3], ErrInvalidLegacyDuration)
	assert.ErrorIs(t, errored[101], ErrDayBoundaryOverflow)
	assert.ErrorIs(t, errored[102], ErrUnparseableLegacyTime)

	spec, err := store.GetSpec(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, spec.SlotsNeeded)
	assert.Equal(t, 60, spec.DurationMinutes)

	a, err := store.GetByID(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 18, a.StartSlot)
	assert.Equal(t, 20, a.EndSlot)

	slots, ok := store.WorkingSlots(10, time.Monday)
	require.True(t, ok)
	assert.Len(t, slots, 18)

	schedule, err := store.GetSchedule(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, schedule.Days[time.Tuesday].IsWorking)

	var errorAudits, noteAudits int
	for _, audit := range store.Audits() {
		assert.Equal(t, summary.RunID, audit.RunID)
		if audit.IsError {
			errorAudits++
		} else {
			noteAudits++
		}
	}
	assert.Equal(t, 3, errorAudits)
	assert.Equal(t, summary.Notes, noteAudits)
	assert.Positive(t, noteAudits)
}

func TestExecute_IsIdempotent(t *testing.T) {
	store := memstore.New()
	seedLegacy(store)
	uc := NewUseCase(store, store.TxManager(), Settings{BatchSize: 10}, logger.NewNop())

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Positive(t, first.Migrated)

	before := store.Appointments()

	second, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Zero(t, second.Migrated)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, before, store.Appointments())
}

func TestExecute_DryRunWritesNothing(t *testing.T) {
	store := memstore.New()
	seedLegacy(store)
	uc := NewUseCase(store, store.TxManager(), Settings{DryRun: true}, logger.NewNop())

	summary, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 4, summary.Migrated)
	assert.Empty(t, store.Appointments())
	assert.Empty(t, store.Audits())
}

func TestExecute_ContextCancelled(t *testing.T) {
	store := memstore.New()
	seedLegacy(store)
	uc := NewUseCase(store, store.TxManager(), Settings{}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
