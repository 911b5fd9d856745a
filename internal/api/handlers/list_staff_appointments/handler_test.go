package list_staff_appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type fakeService struct {
	err             error
	gotDate         time.Time
	includeInactive bool
}

func (f *fakeService) ListStaffDay(_ context.Context, staffID int64, date time.Time, includeInactive bool) (*models.AppointmentListResponse, error) {
	f.gotDate = date
	f.includeInactive = includeInactive
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentListResponse{
		StaffID:      staffID,
		Date:         date.Format("2006-01-02"),
		Appointments: []models.AppointmentResponse{{ID: 1, StartSlot: 20, Status: "pending"}},
	}, nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/staff/{staffId}/appointments", h.Handle).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, logger.NewNop())

	rec := serve(h, "/api/v1/staff/3/appointments?date=2025-10-13&includeInactive=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.AppointmentListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.StaffID)
	assert.Equal(t, "2025-10-13", body.Date)
	assert.Len(t, body.Appointments, 1)
	assert.True(t, svc.includeInactive)
	assert.Equal(t, time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), svc.gotDate)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"bad staff id", "/api/v1/staff/x/appointments?date=2025-10-13", nil, http.StatusBadRequest},
		{"missing date", "/api/v1/staff/3/appointments", nil, http.StatusBadRequest},
		{"bad date", "/api/v1/staff/3/appointments?date=13.10.2025", nil, http.StatusBadRequest},
		{"bad includeInactive", "/api/v1/staff/3/appointments?date=2025-10-13&includeInactive=maybe", nil, http.StatusBadRequest},
		{"internal", "/api/v1/staff/3/appointments?date=2025-10-13", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, logger.NewNop())
			assert.Equal(t, tt.status, serve(h, tt.target).Code)
		})
	}
}
