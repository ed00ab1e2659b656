package converter

import (
	"time"

	"appointment-dashboard/internal/delivery/dto"
	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/service"
)

// QueryToCriteria builds the filter criteria of a request. Missing date boundaries take the
// default window ending on today's calendar day in loc.
func QueryToCriteria(q *dto.DashboardQuery, today time.Time, loc *time.Location) (entity.FilterCriteria, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := today.In(loc)
	criteria := entity.DefaultFilterCriteria(time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc))
	if q == nil {
		return criteria, nil
	}

	if q.DateStart != "" {
		start, err := service.ParseFilterDate(q.DateStart, loc)
		if err != nil {
			return entity.FilterCriteria{}, err
		}
		criteria.DateStart = start
	}
	if q.DateEnd != "" {
		end, err := service.ParseFilterDate(q.DateEnd, loc)
		if err != nil {
			return entity.FilterCriteria{}, err
		}
		criteria.DateEnd = end
	}

	criteria.Doctor = selector(q.Doctor)
	criteria.City = selector(q.City)
	criteria.Status = selector(q.Status)
	criteria.Procedure = selector(q.Procedure)
	criteria.Insurance = selector(q.Insurance)
	return criteria, nil
}

// QueryToSortState falls back to the default order for each missing part.
func QueryToSortState(q *dto.DashboardQuery) entity.SortState {
	state := entity.DefaultSortState()
	if q == nil {
		return state
	}
	if field := entity.SortField(q.Sort); field != "" && field != state.Field {
		// A new column starts descending unless a direction is given.
		state, _ = state.Select(field)
	}
	if q.Direction != "" {
		state.Direction = entity.SortDirection(q.Direction)
	}
	return state
}

func QueryToPageState(q *dto.DashboardQuery) entity.PageState {
	state := entity.NewPageState()
	if q != nil && q.Page > 0 {
		state.CurrentPage = q.Page
	}
	return state
}

func CriteriaToAppliedFilters(criteria entity.FilterCriteria) dto.AppliedFilters {
	return dto.AppliedFilters{
		DateStart: formatDate(criteria.DateStart),
		DateEnd:   formatDate(criteria.DateEnd),
		Doctor:    selectorValue(criteria.Doctor),
		City:      selectorValue(criteria.City),
		Status:    selectorValue(criteria.Status),
		Procedure: selectorValue(criteria.Procedure),
		Insurance: selectorValue(criteria.Insurance),

		SelectorsActive: criteria.HasActiveSelectors(),
	}
}

// SnapshotToInfo describes the snapshot a response was computed from. A nil snapshot
// yields an empty description.
func SnapshotToInfo(snapshot *entity.Snapshot) dto.SnapshotInfo {
	if snapshot == nil {
		return dto.SnapshotInfo{}
	}
	fetchedAt := snapshot.FetchedAt
	return dto.SnapshotInfo{
		Sequence:  snapshot.Sequence,
		FetchID:   snapshot.FetchID,
		Source:    snapshot.Source,
		FetchedAt: &fetchedAt,
		Records:   len(snapshot.Appointments),
	}
}

func PageToResponse(page service.Page, sortState entity.SortState) dto.AppointmentListResponse {
	return dto.AppointmentListResponse{
		Appointments: page.Items,
		Sort:         sortState.Field,
		Direction:    sortState.Direction,
		TotalItems:   page.TotalItems,
		TotalPages:   page.TotalPages,
		CurrentPage:  page.CurrentPage,
		PageSize:     page.PageSize,
		RangeStart:   page.RangeStart,
		RangeEnd:     page.RangeEnd,
	}
}

func selector(value string) entity.Selector {
	if value == "" {
		return entity.SelectAll
	}
	return entity.Selector(value)
}

func selectorValue(s entity.Selector) string {
	if s.IsWildcard() {
		return string(entity.SelectAll)
	}
	return string(s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(service.FilterDateLayout)
}
