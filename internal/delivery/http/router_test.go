package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointment-dashboard/internal/delivery/http/handler"
	"appointment-dashboard/internal/delivery/http/middleware"
	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/infrastructure/metrics"
	"appointment-dashboard/internal/repository"
	"appointment-dashboard/internal/service"
	"appointment-dashboard/internal/usecase"
	"appointment-dashboard/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	snapshots := repository.NewMemorySnapshotRepository()
	now := time.Now()
	_, err := snapshots.Apply(context.Background(), &entity.Snapshot{
		Sequence:     1,
		Source:       entity.SnapshotSourceUpstream,
		FetchedAt:    now,
		Appointments: service.PlaceholderAppointments(now),
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.NewFeedMetrics(reg)

	uc := usecase.NewDashboardUsecase(log, snapshots, nil, service.NewMetricsAggregator(false), nil, time.UTC)
	dashboardHandler := handler.NewDashboardHandler(uc, validator.NewValidator())

	return NewRouter(
		dashboardHandler,
		nil,
		middleware.NewRequestMiddleware(log),
		middleware.NewCORSMiddleware(),
		reg,
	).Setup()
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboard", http.StatusOK},
		{http.MethodGet, "/api/v1/appointments?sort=patient_name&direction=asc", http.StatusOK},
		{http.MethodGet, "/api/v1/filter-options", http.StatusOK},
		{http.MethodGet, "/api/v1/metrics/summary", http.StatusOK},
		{http.MethodGet, "/api/v1/charts", http.StatusOK},
		{http.MethodGet, "/api/v1/export?format=xlsx", http.StatusOK},
		{http.MethodPost, "/api/v1/refresh", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/audit-logs", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/does-not-exist", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/dashboard", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRouter_PreflightAndRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_MetricsExposeFeedCollectors(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_feed_stale_discarded_total")
}

func TestRouter_UnknownPathKeepsRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
