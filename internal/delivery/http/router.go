package http

import (
	"net/http"

	"appointment-dashboard/internal/delivery/http/handler"
	"appointment-dashboard/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router            *mux.Router
	dashboardHandler  *handler.DashboardHandler
	auditLogHandler   *handler.AuditLogHandler
	requestMiddleware *middleware.RequestMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	gatherer          prometheus.Gatherer
}

// NewRouter wires the HTTP routes. auditLogHandler may be nil when no audit database is configured.
func NewRouter(
	dashboardHandler *handler.DashboardHandler,
	auditLogHandler *handler.AuditLogHandler,
	requestMiddleware *middleware.RequestMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	gatherer prometheus.Gatherer,
) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		router:            mux.NewRouter(),
		dashboardHandler:  dashboardHandler,
		auditLogHandler:   auditLogHandler,
		requestMiddleware: requestMiddleware,
		corsMiddleware:    corsMiddleware,
		gatherer:          gatherer,
	}
}

func (r *Router) Setup() http.Handler {
	// Prometheus scrape endpoint
	r.router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Dashboard routes
	api.HandleFunc("/dashboard", r.dashboardHandler.GetDashboard).Methods(http.MethodGet)
	api.HandleFunc("/appointments", r.dashboardHandler.ListAppointments).Methods(http.MethodGet)
	api.HandleFunc("/filter-options", r.dashboardHandler.GetFilterOptions).Methods(http.MethodGet)
	api.HandleFunc("/metrics/summary", r.dashboardHandler.GetMetrics).Methods(http.MethodGet)
	api.HandleFunc("/charts", r.dashboardHandler.GetCharts).Methods(http.MethodGet)
	api.HandleFunc("/export", r.dashboardHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/refresh", r.dashboardHandler.Refresh).Methods(http.MethodPost)

	// Audit trail
	if r.auditLogHandler != nil {
		api.HandleFunc("/audit-logs", r.auditLogHandler.GetRecentAuditLogs).Methods(http.MethodGet)
		api.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	}

	// Request ids and CORS apply to every request, including preflights and unmatched paths
	return r.requestMiddleware.Handle(r.corsMiddleware.Handle(r.router))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
