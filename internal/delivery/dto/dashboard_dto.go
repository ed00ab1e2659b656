package dto

import (
	"time"

	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/service"
)

// Request DTOs

// DashboardQuery carries the filter and view selections of a dashboard request.
// Empty fields fall back to the defaults: the last year, every selector at "all",
// newest created first, page 1.
type DashboardQuery struct {
	DateStart string `json:"date_start" validate:"omitempty,datetime=2006-01-02"`
	DateEnd   string `json:"date_end" validate:"omitempty,datetime=2006-01-02"`
	Doctor    string `json:"doctor"`
	City      string `json:"city"`
	Status    string `json:"status"`
	Procedure string `json:"procedure"`
	Insurance string `json:"insurance"`
	Sort      string `json:"sort" validate:"omitempty,oneof=id opportunity_id patient_name doctor city procedure insurance appointment_status appointment_date created_at updated_at phone email notes"`
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc"`
	Page      int    `json:"page" validate:"omitempty,min=1"`
}

type ExportQuery struct {
	DashboardQuery
	Format  string `json:"format" validate:"omitempty,oneof=csv xlsx"`
	Columns string `json:"columns" validate:"omitempty,oneof=full table"`
}

// Response DTOs

type SnapshotInfo struct {
	Sequence  int64                 `json:"sequence"`
	FetchID   string                `json:"fetch_id,omitempty"`
	Source    entity.SnapshotSource `json:"source,omitempty"`
	FetchedAt *time.Time            `json:"fetched_at,omitempty"`
	Records   int                   `json:"records"`
}

type AppliedFilters struct {
	DateStart string `json:"date_start"`
	DateEnd   string `json:"date_end"`
	Doctor    string `json:"doctor"`
	City      string `json:"city"`
	Status    string `json:"status"`
	Procedure string `json:"procedure"`
	Insurance string `json:"insurance"`
	// SelectorsActive is true when any field selector narrows the set.
	SelectorsActive bool `json:"selectors_active"`
}

type AppointmentListResponse struct {
	Appointments []entity.Appointment `json:"appointments"`
	Sort         entity.SortField     `json:"sort"`
	Direction    entity.SortDirection `json:"direction"`
	TotalItems   int                  `json:"total_items"`
	TotalPages   int                  `json:"total_pages"`
	CurrentPage  int                  `json:"current_page"`
	PageSize     int                  `json:"page_size"`
	RangeStart   int                  `json:"range_start"`
	RangeEnd     int                  `json:"range_end"`
}

type ChartsResponse struct {
	DailyEvolution        []service.DailyBucket  `json:"daily_evolution"`
	StatusDistribution    []service.StatusSlice  `json:"status_distribution"`
	DoctorRanking         []service.RankingEntry `json:"doctor_ranking"`
	ProcedureRanking      []service.RankingEntry `json:"procedure_ranking"`
	CityDistribution      []service.RankingEntry `json:"city_distribution"`
	InsuranceDistribution []service.RankingEntry `json:"insurance_distribution"`
}

type MetricsResponse struct {
	Snapshot SnapshotInfo    `json:"snapshot"`
	Filters  AppliedFilters  `json:"filters"`
	Metrics  service.Metrics `json:"metrics"`
}

type DashboardResponse struct {
	Snapshot      SnapshotInfo            `json:"snapshot"`
	Filters       AppliedFilters          `json:"filters"`
	TotalRecords  int                     `json:"total_records"`
	Filtered      int                     `json:"filtered_records"`
	Metrics       service.Metrics         `json:"metrics"`
	FilterOptions entity.FilterOptions    `json:"filter_options"`
	Charts        ChartsResponse          `json:"charts"`
	Appointments  AppointmentListResponse `json:"appointments"`
}

type RefreshResponse struct {
	Applied  bool         `json:"applied"`
	Snapshot SnapshotInfo `json:"snapshot"`
}

// ExportFile is a serialized export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Records     int
	Content     []byte
}
