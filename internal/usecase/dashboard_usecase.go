package usecase

import (
	"bytes"
	"context"
	"errors"
	"time"

	"appointment-dashboard/internal/converter"
	"appointment-dashboard/internal/delivery/dto"
	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/domain/repository"
	"appointment-dashboard/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidFilterDate   = service.ErrInvalidFilterDate
	ErrUnknownExportFormat = service.ErrUnknownExportFormat
	ErrRefreshUnavailable  = errors.New("feed refresh is not available")
)

// FeedRefresher triggers an on-demand fetch of the upstream feed.
type FeedRefresher interface {
	Refresh(ctx context.Context) (*service.RefreshResult, error)
}

type DashboardUsecase interface {
	GetDashboard(ctx context.Context, req *dto.DashboardQuery) (*dto.DashboardResponse, error)
	ListAppointments(ctx context.Context, req *dto.DashboardQuery) (*dto.AppointmentListResponse, error)
	GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error)
	GetMetrics(ctx context.Context, req *dto.DashboardQuery) (*dto.MetricsResponse, error)
	GetCharts(ctx context.Context, req *dto.DashboardQuery) (*dto.ChartsResponse, error)
	Export(ctx context.Context, requestID string, req *dto.ExportQuery) (*dto.ExportFile, error)
	Refresh(ctx context.Context, requestID string) (*dto.RefreshResponse, error)
}

type dashboardUsecase struct {
	log          *logrus.Logger
	snapshotRepo repository.SnapshotRepository
	refresher    FeedRefresher
	aggregator   *service.MetricsAggregator
	auditService service.AuditService
	location     *time.Location
	now          func() time.Time
}

func NewDashboardUsecase(
	log *logrus.Logger,
	snapshotRepo repository.SnapshotRepository,
	refresher FeedRefresher,
	aggregator *service.MetricsAggregator,
	auditService service.AuditService,
	location *time.Location,
) DashboardUsecase {
	if location == nil {
		location = time.UTC
	}
	if auditService == nil {
		auditService = service.NewNoopAuditService()
	}
	return &dashboardUsecase{
		log:          log,
		snapshotRepo: snapshotRepo,
		refresher:    refresher,
		aggregator:   aggregator,
		auditService: auditService,
		location:     location,
		now:          time.Now,
	}
}

// selection is one request's view of the current snapshot. An inverted date range is not
// rejected; it simply matches nothing dated.
type selection struct {
	snapshot *entity.Snapshot
	criteria entity.FilterCriteria
	records  []entity.Appointment
	filtered []entity.Appointment
	today    time.Time
}

func (u *dashboardUsecase) GetDashboard(ctx context.Context, req *dto.DashboardQuery) (*dto.DashboardResponse, error) {
	sel, err := u.selectRecords(ctx, req)
	if err != nil {
		return nil, err
	}

	sortState := converter.QueryToSortState(req)
	page := service.View(sel.filtered, sortState, converter.QueryToPageState(req))

	return &dto.DashboardResponse{
		Snapshot:      converter.SnapshotToInfo(sel.snapshot),
		Filters:       converter.CriteriaToAppliedFilters(sel.criteria),
		TotalRecords:  len(sel.records),
		Filtered:      len(sel.filtered),
		Metrics:       u.aggregator.Aggregate(sel.filtered),
		FilterOptions: service.BuildFilterOptions(sel.records),
		Charts:        u.charts(sel),
		Appointments:  converter.PageToResponse(page, sortState),
	}, nil
}

func (u *dashboardUsecase) ListAppointments(ctx context.Context, req *dto.DashboardQuery) (*dto.AppointmentListResponse, error) {
	sel, err := u.selectRecords(ctx, req)
	if err != nil {
		return nil, err
	}

	sortState := converter.QueryToSortState(req)
	page := service.View(sel.filtered, sortState, converter.QueryToPageState(req))
	response := converter.PageToResponse(page, sortState)
	return &response, nil
}

// GetFilterOptions projects the whole snapshot, so options never disappear once a filter is applied.
func (u *dashboardUsecase) GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	snapshot, err := u.currentSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	options := service.BuildFilterOptions(snapshot.Records())
	return &options, nil
}

func (u *dashboardUsecase) GetMetrics(ctx context.Context, req *dto.DashboardQuery) (*dto.MetricsResponse, error) {
	sel, err := u.selectRecords(ctx, req)
	if err != nil {
		return nil, err
	}

	return &dto.MetricsResponse{
		Snapshot: converter.SnapshotToInfo(sel.snapshot),
		Filters:  converter.CriteriaToAppliedFilters(sel.criteria),
		Metrics:  u.aggregator.Aggregate(sel.filtered),
	}, nil
}

func (u *dashboardUsecase) GetCharts(ctx context.Context, req *dto.DashboardQuery) (*dto.ChartsResponse, error) {
	sel, err := u.selectRecords(ctx, req)
	if err != nil {
		return nil, err
	}

	charts := u.charts(sel)
	return &charts, nil
}

// Export serializes the filtered records in the requested order. The whole filtered set is
// exported, not only the visible page.
func (u *dashboardUsecase) Export(ctx context.Context, requestID string, req *dto.ExportQuery) (*dto.ExportFile, error) {
	if req == nil {
		req = &dto.ExportQuery{}
	}
	format := service.ExportFormat(req.Format)
	if format == "" {
		format = service.ExportFormatCSV
	}
	columnSet := req.Columns
	if columnSet == "" {
		columnSet = service.ColumnSetFull
	}
	columns := service.ExportColumnSet(columnSet, u.location)

	sel, err := u.selectRecords(ctx, &req.DashboardQuery)
	if err != nil {
		return nil, err
	}
	records := service.SortAppointments(sel.filtered, converter.QueryToSortState(&req.DashboardQuery))

	var buf bytes.Buffer
	if err := service.Export(&buf, format, records, columns); err != nil {
		if errors.Is(err, service.ErrUnknownExportFormat) {
			return nil, ErrUnknownExportFormat
		}
		u.log.Warnf("Failed to serialize export: %+v", err)
		return nil, err
	}

	u.auditService.LogExport(ctx, requestID, format, columnSet, len(records))

	return &dto.ExportFile{
		Filename:    service.ExportFilename(format, u.now().In(u.location)),
		ContentType: format.ContentType(),
		Records:     len(records),
		Content:     buf.Bytes(),
	}, nil
}

func (u *dashboardUsecase) Refresh(ctx context.Context, requestID string) (*dto.RefreshResponse, error) {
	if u.refresher == nil {
		return nil, ErrRefreshUnavailable
	}

	result, err := u.refresher.Refresh(ctx)
	if err != nil {
		u.log.Warnf("Failed to refresh feed: %+v", err)
		return nil, err
	}

	u.auditService.LogRefresh(ctx, requestID, result)

	return &dto.RefreshResponse{
		Applied:  result.Applied,
		Snapshot: converter.SnapshotToInfo(result.Snapshot),
	}, nil
}

func (u *dashboardUsecase) currentSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	snapshot, err := u.snapshotRepo.Current(ctx)
	if err != nil {
		u.log.Warnf("Failed to read current snapshot: %+v", err)
		return nil, err
	}
	return snapshot, nil
}

func (u *dashboardUsecase) selectRecords(ctx context.Context, req *dto.DashboardQuery) (*selection, error) {
	today := u.now().In(u.location)
	criteria, err := converter.QueryToCriteria(req, today, u.location)
	if err != nil {
		return nil, err
	}

	snapshot, err := u.currentSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	records := snapshot.Records()

	return &selection{
		snapshot: snapshot,
		criteria: criteria,
		records:  records,
		filtered: service.FilterAppointments(records, criteria),
		today:    today,
	}, nil
}

func (u *dashboardUsecase) charts(sel *selection) dto.ChartsResponse {
	return dto.ChartsResponse{
		DailyEvolution:        service.DailyEvolution(sel.filtered, sel.today, u.location),
		StatusDistribution:    service.StatusDistribution(sel.filtered),
		DoctorRanking:         service.DoctorRanking(sel.filtered),
		ProcedureRanking:      service.ProcedureRanking(sel.filtered),
		CityDistribution:      service.CityDistribution(sel.filtered),
		InsuranceDistribution: service.InsuranceDistribution(sel.filtered),
	}
}
