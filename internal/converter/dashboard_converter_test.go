package converter

import (
	"testing"
	"time"

	"appointment-dashboard/internal/delivery/dto"
	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryToCriteria_Defaults(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on the 16th is still the 15th in BRT.
	now := time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC)

	criteria, err := QueryToCriteria(&dto.DashboardQuery{}, now, loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, loc), criteria.DateEnd)
	assert.Equal(t, time.Date(2025, 10, 15, 0, 0, 0, 0, loc), criteria.DateStart)
	assert.Equal(t, entity.SelectAll, criteria.Doctor)
	assert.False(t, criteria.HasActiveSelectors())
}

func TestQueryToCriteria_Explicit(t *testing.T) {
	criteria, err := QueryToCriteria(&dto.DashboardQuery{
		DateStart: "2026-01-01",
		DateEnd:   "2026-01-31",
		Doctor:    "Dr. Silva",
		Status:    "all",
	}, fixedNow, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), criteria.DateStart)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), criteria.DateEnd)
	assert.Equal(t, entity.Selector("Dr. Silva"), criteria.Doctor)
	assert.True(t, criteria.Status.IsWildcard())
}

func TestQueryToCriteria_InvalidDate(t *testing.T) {
	_, err := QueryToCriteria(&dto.DashboardQuery{DateEnd: "31/01/2026"}, fixedNow, time.UTC)
	assert.ErrorIs(t, err, service.ErrInvalidFilterDate)
}

func TestQueryToSortAndPageState(t *testing.T) {
	assert.Equal(t, entity.DefaultSortState(), QueryToSortState(nil))
	assert.Equal(t, entity.SortState{Field: entity.SortByDoctor, Direction: entity.SortDescending},
		QueryToSortState(&dto.DashboardQuery{Sort: "doctor"}))
	assert.Equal(t, entity.SortState{Field: entity.SortByCreatedAt, Direction: entity.SortAscending},
		QueryToSortState(&dto.DashboardQuery{Direction: "asc"}))
	assert.Equal(t, entity.SortState{Field: entity.SortByDoctor, Direction: entity.SortAscending},
		QueryToSortState(&dto.DashboardQuery{Sort: "doctor", Direction: "asc"}))
	assert.Equal(t, entity.DefaultSortState(),
		QueryToSortState(&dto.DashboardQuery{Sort: "created_at"}))

	assert.Equal(t, 1, QueryToPageState(nil).CurrentPage)
	assert.Equal(t, 4, QueryToPageState(&dto.DashboardQuery{Page: 4}).CurrentPage)
	assert.Equal(t, entity.DefaultPageSize, QueryToPageState(&dto.DashboardQuery{Page: 4}).PageSize)
}

func TestCriteriaToAppliedFilters(t *testing.T) {
	criteria := entity.DefaultFilterCriteria(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	criteria.City = "Recife - PE"
	criteria.Doctor = ""

	got := CriteriaToAppliedFilters(criteria)

	assert.Equal(t, dto.AppliedFilters{
		DateStart: "2025-10-15",
		DateEnd:   "2026-10-15",
		Doctor:    "all",
		City:      "Recife - PE",
		Status:    "all",
		Procedure: "all",
		Insurance: "all",

		SelectorsActive: true,
	}, got)
	assert.False(t, CriteriaToAppliedFilters(entity.DefaultFilterCriteria(fixedNow)).SelectorsActive)
}

func TestSnapshotToInfo(t *testing.T) {
	assert.Equal(t, dto.SnapshotInfo{}, SnapshotToInfo(nil))

	info := SnapshotToInfo(&entity.Snapshot{
		Sequence:     9,
		FetchID:      "f-9",
		Source:       entity.SnapshotSourcePlaceholder,
		FetchedAt:    fixedNow,
		Appointments: make([]entity.Appointment, 3),
	})
	assert.Equal(t, int64(9), info.Sequence)
	assert.Equal(t, 3, info.Records)
	require.NotNil(t, info.FetchedAt)
	assert.Equal(t, fixedNow, *info.FetchedAt)
}

func TestAuditLogsToResponses(t *testing.T) {
	logs := []entity.AuditLog{{ID: 1, RequestID: "r", Action: entity.AuditActionFeedRefresh, CreatedAt: fixedNow}}

	got := AuditLogsToResponses(logs)

	require.Len(t, got, 1)
	assert.Equal(t, "r", got[0].RequestID)
	assert.Nil(t, AuditLogToResponse(nil))
	assert.Equal(t, int64(1), AuditLogToResponse(&logs[0]).ID)
}
