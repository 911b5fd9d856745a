package migrate_legacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func TestMigrateService(t *testing.T) {
	tests := []struct {
		name      string
		duration  int
		slots     int
		adjusted  int
		rewritten bool
	}{
		{"aligned", 60, 2, 60, false},
		{"one minute", 1, 1, 30, true},
		{"45 minutes", 45, 2, 60, true},
		{"61 minutes", 61, 3, 90, true},
		{"full day", 1440, 48, 1440, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MigrateService(domain.LegacyService{ID: 1, DurationMinutes: tt.duration})
			require.NoError(t, err)

			assert.Equal(t, tt.slots, got.SlotsNeeded)
			assert.Equal(t, tt.adjusted, got.AdjustedDuration)
			assert.Equal(t, tt.rewritten, got.Rewritten)
			if tt.rewritten {
				assert.Contains(t, got.AuditNote, "rewritten")
			} else {
				assert.Empty(t, got.AuditNote)
			}
		})
	}
}

func TestMigrateService_InvalidDuration(t *testing.T) {
	for _, d := range []int{0, -30, 1441} {
		_, err := MigrateService(domain.LegacyService{ID: 1, DurationMinutes: d})
		assert.ErrorIs(t, err, ErrInvalidLegacyDuration, "duration %d", d)
	}
}

func TestMigrateAppointment(t *testing.T) {
	got, err := MigrateAppointment(domain.LegacyAppointment{ID: 1, StartTime: "09:00", DurationMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, 18, got.StartSlot)
	assert.Equal(t, 20, got.EndSlot)
	assert.Equal(t, 2, got.SlotsUsed)
	assert.Empty(t, got.Notes)

	got, err = MigrateAppointment(domain.LegacyAppointment{ID: 2, StartTime: "09:45", DurationMinutes: 45})
	require.NoError(t, err)
	assert.Equal(t, 19, got.StartSlot)
	assert.Equal(t, 21, got.EndSlot)
	assert.Len(t, got.Notes, 2)
}

func TestMigrateAppointment_DayBoundaryOverflow(t *testing.T) {
	got, err := MigrateAppointment(domain.LegacyAppointment{ID: 1, StartTime: "23:30", DurationMinutes: 60})

	assert.ErrorIs(t, err, ErrDayBoundaryOverflow)
	assert.Zero(t, got.EndSlot)

	got, err = MigrateAppointment(domain.LegacyAppointment{ID: 2, StartTime: "23:30", DurationMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 48, got.EndSlot)
}

func TestMigrateAppointment_Unparseable(t *testing.T) {
	for _, s := range []string{"", "9:00", "25:00", "noon", "24:00"} {
		_, err := MigrateAppointment(domain.LegacyAppointment{ID: 1, StartTime: s, DurationMinutes: 30})
		assert.ErrorIs(t, err, ErrUnparseableLegacyTime, "start %q", s)
	}
}

func TestMigrateStaffAvailability(t *testing.T) {
	legacy := domain.LegacyStaffAvailability{
		StaffID: 7,
		Days: []domain.LegacyStaffDay{
			{
				Weekday:        time.Monday,
				IsWorking:      true,
				StartTime:      ptr.Ptr("09:00"),
				EndTime:        ptr.Ptr("18:00"),
				LunchStartTime: ptr.Ptr("13:00"),
				LunchEndTime:   ptr.Ptr("14:00"),
			},
			{Weekday: time.Tuesday, IsWorking: true, StartTime: ptr.Ptr("09:00")},
			{Weekday: time.Wednesday, IsWorking: true, StartTime: ptr.Ptr("18:00"), EndTime: ptr.Ptr("09:00")},
			{
				Weekday:        time.Thursday,
				IsWorking:      true,
				StartTime:      ptr.Ptr("10:00"),
				EndTime:        ptr.Ptr("16:00"),
				LunchStartTime: ptr.Ptr("17:00"),
				LunchEndTime:   ptr.Ptr("18:00"),
			},
			{Weekday: time.Sunday, IsWorking: false},
		},
	}

	got := MigrateStaffAvailability(legacy)
	require.Len(t, got.Days, 5)

	monday := got.Days[0]
	assert.True(t, monday.Schedule.IsWorking)
	assert.Equal(t, 18, monday.Schedule.StartSlot)
	assert.Equal(t, 36, monday.Schedule.EndSlot)
	assert.Equal(t, 26, *monday.Schedule.LunchBreakStartSlot)
	assert.Equal(t, 28, *monday.Schedule.LunchBreakEndSlot)
	assert.Len(t, monday.WorkingSlots, 18)
	assert.Equal(t, 18, monday.WorkingSlots[0])
	assert.Equal(t, 35, monday.WorkingSlots[17])
	assert.Empty(t, monday.Notes)

	tuesday := got.Days[1]
	assert.False(t, tuesday.Schedule.IsWorking)
	assert.NotEmpty(t, tuesday.Notes)

	wednesday := got.Days[2]
	assert.False(t, wednesday.Schedule.IsWorking)
	assert.NotEmpty(t, wednesday.Notes)

	thursday := got.Days[3]
	assert.True(t, thursday.Schedule.IsWorking)
	assert.Nil(t, thursday.Schedule.LunchBreakStartSlot)
	require.Len(t, thursday.Notes, 1)
	assert.Contains(t, thursday.Notes[0], "lunch")

	sunday := got.Days[4]
	assert.False(t, sunday.Schedule.IsWorking)
	assert.Empty(t, sunday.WorkingSlots)
	assert.Empty(t, sunday.Notes)
}

func TestMigrateStaffAvailability_LunchRoundedOutward(t *testing.T) {
	legacy := domain.LegacyStaffAvailability{
		StaffID: 1,
		Days: []domain.LegacyStaffDay{{
			Weekday:        time.Friday,
			IsWorking:      true,
			StartTime:      ptr.Ptr("09:00"),
			EndTime:        ptr.Ptr("18:00"),
			LunchStartTime: ptr.Ptr("13:15"),
			LunchEndTime:   ptr.Ptr("13:45"),
		}},
	}

	day := MigrateStaffAvailability(legacy).Days[0]

	require.NotNil(t, day.Schedule.LunchBreakStartSlot)
	assert.Equal(t, 26, *day.Schedule.LunchBreakStartSlot)
	assert.Equal(t, 28, *day.Schedule.LunchBreakEndSlot)
}
