package repository

import (
	"testing"
	"time"

	"appointment-dashboard/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAuditLogRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository()

	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WithArgs("req-1", entity.AuditActionDashboardExport, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	log := &entity.AuditLog{
		RequestID: "req-1",
		Action:    entity.AuditActionDashboardExport,
		Metadata:  entity.JSON{"format": "csv"},
	}
	require.NoError(t, repo.Create(db, log))

	assert.Equal(t, int64(11), log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_FindRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository()
	createdAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "request_id", "action", "metadata", "created_at"}).
		AddRow(2, "req-2", entity.AuditActionFeedRefresh, []byte(`{"applied":true}`), createdAt).
		AddRow(1, "req-1", entity.AuditActionFeedRefresh, nil, createdAt.Add(-time.Minute))
	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE action = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(entity.AuditActionFeedRefresh, 10).
		WillReturnRows(rows)

	logs, err := repo.FindRecent(db, entity.AuditActionFeedRefresh, 10)
	require.NoError(t, err)

	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), logs[0].ID)
	assert.Equal(t, true, logs[0].Metadata["applied"])
	assert.Nil(t, logs[1].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_FindRecentAllActions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository()

	mock.ExpectQuery(`SELECT \* FROM "audit_logs" ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	logs, err := repo.FindRecent(db, "", 50)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository()

	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE id = \$1`).
		WithArgs(int64(404), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	log, err := repo.FindByID(db, 404)
	require.NoError(t, err)
	assert.Nil(t, log)
	assert.NoError(t, mock.ExpectationsWereMet())
}
