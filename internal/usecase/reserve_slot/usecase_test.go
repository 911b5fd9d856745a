package reserve_slot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/testutil/memstore"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/slot"
)

var (
	monday = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	sunday = time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
)

const (
	staffID     = 1
	haircutID   = 1 // 2 slots, staff working hours
	yogaClassID = 2 // 1 slot, Monday 10:00-12:00, capacity 3
	clientID    = 42
	unknownID   = 999
	nineOClock  = 18
	tenOClock   = 20
	sixPM       = 36
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyChanged(_ context.Context, _ int64, _ time.Time, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, reason)
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *recordingMetrics) IncReservation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

type fixture struct {
	store    *memstore.Store
	notifier *recordingNotifier
	metrics  *recordingMetrics
	uc       *UseCase
}

func newFixture(t *testing.T, settings Settings, now time.Time) *fixture {
	t.Helper()

	store := memstore.New()
	store.PutStaff(staffID, domain.StaffDaySchedule{
		Weekday:   time.Monday,
		IsWorking: true,
		StartSlot: nineOClock,
		EndSlot:   sixPM,
	})
	store.PutService(domain.ServiceSlotSpec{ServiceID: haircutID, Name: "Haircut", DurationMinutes: 60, SlotsNeeded: 2})
	store.PutService(domain.ServiceSlotSpec{
		ServiceID:       yogaClassID,
		Name:            "Yoga",
		DurationMinutes: 30,
		SlotsNeeded:     1,
		Windows: []domain.SlotWindow{
			{ServiceID: yogaClassID, Weekday: time.Monday, StartSlot: tenOClock, EndSlot: 24, Capacity: 3},
		},
	})

	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
	}
	f.uc = NewUseCase(store, store, store, store.TxManager(), f.notifier, f.metrics, settings, logger.NewNop())
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func request(serviceID int64, startSlot int) *Request {
	return &Request{StaffID: staffID, ServiceID: serviceID, ClientID: clientID, Date: monday, StartSlot: startSlot}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)

	resp, err := f.uc.Execute(context.Background(), request(haircutID, tenOClock))
	require.NoError(t, err)

	assert.Positive(t, resp.AppointmentID)
	assert.NotEmpty(t, resp.Reference.String())
	assert.Equal(t, slot.Range{Start: 20, End: 22}, resp.Range)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)
	assert.Equal(t, string(domain.StatusPending), resp.Status)

	stored := f.store.Appointments()
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].SlotsUsed)
	assert.Equal(t, int64(clientID), stored[0].ClientID)

	assert.Equal(t, []string{"reserved"}, f.notifier.calls)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeSuccess])
}

func TestExecute_RangeEndingAtMidnight(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)
	f.store.PutStaff(staffID, domain.StaffDaySchedule{Weekday: time.Monday, IsWorking: true, StartSlot: 40, EndSlot: slot.SlotsPerDay})

	resp, err := f.uc.Execute(context.Background(), request(haircutID, 46))
	require.NoError(t, err)
	assert.Equal(t, "24:00", resp.EndTime)
}

func TestExecute_OverlapIsRejected(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)

	_, err := f.uc.Execute(context.Background(), request(haircutID, tenOClock))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request(haircutID, 21))
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, ReasonSlotUnavailable, conflict.Reason)
	assert.Equal(t, []int{21}, conflict.ConflictingSlots)

	assert.Len(t, f.store.Appointments(), 1)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeSlotUnavailable])
}

func TestExecute_OutsideWorkingHours(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)

	_, err := f.uc.Execute(context.Background(), request(haircutID, 35))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int{36}, conflict.ConflictingSlots)
}

func TestExecute_OutsideServiceWindow(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)

	_, err := f.uc.Execute(context.Background(), request(yogaClassID, nineOClock))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []int{nineOClock}, conflict.ConflictingSlots)
}

func TestExecute_ConcurrentReservationsSingleWinner(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)

	const attempts = 20
	errs := make([]error, attempts)

	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			_, errs[i] = f.uc.Execute(context.Background(), request(haircutID, tenOClock))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}

	assert.Equal(t, 1, winners)
	assert.Len(t, f.store.Appointments(), 1)
}

func TestExecute_ConcurrentReservationsRespectCapacity(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)

	const attempts = 10
	errs := make([]error, attempts)

	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			_, errs[i] = f.uc.Execute(context.Background(), request(yogaClassID, tenOClock))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		}
	}

	assert.Equal(t, 3, winners)
	assert.Len(t, f.store.Appointments(), 3)
	assert.Equal(t, 3, f.metrics.outcomes[metrics.OutcomeSuccess])
	assert.Equal(t, 7, f.metrics.outcomes[metrics.OutcomeSlotUnavailable])
}

func TestExecute_CancelledAppointmentFreesRange(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, request(haircutID, tenOClock))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request(haircutID, tenOClock))
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, f.store.UpdateStatus(ctx, first.AppointmentID, domain.StatusPending, domain.StatusCancelled, sunday))

	_, err = f.uc.Execute(ctx, request(haircutID, tenOClock))
	assert.NoError(t, err)
}

func TestExecute_SerializationFailureIsReservationRace(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)
	f.store.FailCommit = errors.New("could not serialize access due to concurrent update")

	_, err := f.uc.Execute(context.Background(), request(haircutID, tenOClock))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ReasonReservationRace, conflict.Reason)
	assert.Empty(t, f.store.Appointments())
	assert.Empty(t, f.notifier.calls)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeReservationRace])

	// retry succeeds
	_, err = f.uc.Execute(context.Background(), request(haircutID, tenOClock))
	assert.NoError(t, err)
}

func TestExecute_TimeRules(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		now       time.Time
		date      time.Time
		startSlot int
		wantErr   error
	}{
		{
			name:      "date in the past",
			now:       monday.AddDate(0, 0, 1),
			date:      monday,
			startSlot: tenOClock,
			wantErr:   ErrSlotInPast,
		},
		{
			name:      "start already passed today",
			now:       monday.Add(10*time.Hour + 15*time.Minute),
			date:      monday,
			startSlot: tenOClock,
			wantErr:   ErrSlotInPast,
		},
		{
			name:      "inside minimum notice",
			settings:  Settings{MinBookingNoticeMinutes: 60},
			now:       monday.Add(9 * time.Hour),
			date:      monday,
			startSlot: 19,
			wantErr:   ErrSlotInPast,
		},
		{
			name:      "beyond advance limit",
			settings:  Settings{AdvanceBookingDays: 7},
			now:       sunday,
			date:      monday.AddDate(0, 0, 14),
			startSlot: tenOClock,
			wantErr:   ErrDateTooFarInFuture,
		},
		{
			name:      "later today is fine",
			settings:  Settings{MinBookingNoticeMinutes: 60},
			now:       monday.Add(9 * time.Hour),
			date:      monday,
			startSlot: tenOClock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.settings, tt.now)
			req := request(haircutID, tt.startSlot)
			req.Date = tt.date

			_, err := f.uc.Execute(context.Background(), req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeRejected])
		})
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{StaffID: 0, ServiceID: haircutID, ClientID: clientID, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(ctx, &Request{StaffID: staffID, ServiceID: haircutID, ClientID: 0, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(ctx, request(haircutID, slot.SlotsPerDay))
	assert.ErrorIs(t, err, slot.ErrSlotOutOfRange)

	_, err = f.uc.Execute(ctx, request(haircutID, 47))
	assert.ErrorIs(t, err, slot.ErrInvalidSlotRange)
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture(t, Settings{}, sunday)
	ctx := context.Background()

	req := request(haircutID, tenOClock)
	req.StaffID = unknownID
	_, err := f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrStaffNotFound)

	_, err = f.uc.Execute(ctx, request(unknownID, tenOClock))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
