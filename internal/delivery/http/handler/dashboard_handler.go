package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"appointment-dashboard/internal/delivery/dto"
	"appointment-dashboard/internal/delivery/http/middleware"
	"appointment-dashboard/internal/usecase"
	"appointment-dashboard/pkg/response"
	"appointment-dashboard/pkg/validator"
)

var errInvalidPage = errors.New("invalid page")

type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
	validator        *validator.CustomValidator
}

func NewDashboardHandler(dashboardUsecase usecase.DashboardUsecase, validator *validator.CustomValidator) *DashboardHandler {
	return &DashboardHandler{
		dashboardUsecase: dashboardUsecase,
		validator:        validator,
	}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardUsecase.GetDashboard(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to build dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *DashboardHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	appointments, err := h.dashboardUsecase.ListAppointments(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to get appointments")
		return
	}

	meta := &response.Meta{
		Page:       appointments.CurrentPage,
		Limit:      appointments.PageSize,
		Total:      int64(appointments.TotalItems),
		TotalPages: appointments.TotalPages,
	}
	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully", appointments, meta)
}

func (h *DashboardHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.dashboardUsecase.GetFilterOptions(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get filter options")
		return
	}

	response.Success(w, http.StatusOK, "Filter options retrieved successfully", options)
}

func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	metrics, err := h.dashboardUsecase.GetMetrics(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to get metrics")
		return
	}

	response.Success(w, http.StatusOK, "Metrics retrieved successfully", metrics)
}

func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	charts, err := h.dashboardUsecase.GetCharts(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Failed to get charts")
		return
	}

	response.Success(w, http.StatusOK, "Charts retrieved successfully", charts)
}

func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	base, err := dashboardQueryFromValues(query)
	if err != nil {
		response.BadRequest(w, "Invalid page number")
		return
	}
	req := dto.ExportQuery{
		DashboardQuery: base,
		Format:         strings.ToLower(strings.TrimSpace(query.Get("format"))),
		Columns:        strings.ToLower(strings.TrimSpace(query.Get("columns"))),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	file, err := h.dashboardUsecase.Export(r.Context(), middleware.GetRequestID(r.Context()), &req)
	if err != nil {
		h.writeError(w, err, "Failed to export appointments")
		return
	}

	response.Attachment(w, file.Filename, file.ContentType, file.Content)
}

func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardUsecase.Refresh(r.Context(), middleware.GetRequestID(r.Context()))
	if err != nil {
		if errors.Is(err, usecase.ErrRefreshUnavailable) {
			response.ServiceUnavailable(w, "Feed refresh is not available")
			return
		}
		response.InternalServerError(w, "Failed to refresh feed")
		return
	}

	message := "Feed refreshed successfully"
	if !result.Applied {
		message = "Feed refreshed, but a newer snapshot was already applied"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *DashboardHandler) parseQuery(w http.ResponseWriter, r *http.Request) (*dto.DashboardQuery, bool) {
	req, err := dashboardQueryFromValues(r.URL.Query())
	if err != nil {
		response.BadRequest(w, "Invalid page number")
		return nil, false
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, false
	}
	return &req, true
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidFilterDate):
		response.BadRequest(w, "Invalid filter date format, use YYYY-MM-DD")
	case errors.Is(err, usecase.ErrUnknownExportFormat):
		response.BadRequest(w, "Unknown export format")
	default:
		response.InternalServerError(w, fallback)
	}
}

// dashboardQueryFromValues reads the filter selectors verbatim; they are matched exactly
// against normalized values.
func dashboardQueryFromValues(values url.Values) (dto.DashboardQuery, error) {
	req := dto.DashboardQuery{
		DateStart: strings.TrimSpace(values.Get("date_start")),
		DateEnd:   strings.TrimSpace(values.Get("date_end")),
		Doctor:    values.Get("doctor"),
		City:      values.Get("city"),
		Status:    values.Get("status"),
		Procedure: values.Get("procedure"),
		Insurance: values.Get("insurance"),
		Sort:      strings.TrimSpace(values.Get("sort")),
		Direction: strings.ToLower(strings.TrimSpace(values.Get("direction"))),
	}

	if page := strings.TrimSpace(values.Get("page")); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return dto.DashboardQuery{}, errInvalidPage
		}
		req.Page = n
	}
	return req, nil
}
