package service

import (
	"context"

	"appointment-dashboard/internal/domain/entity"
	"appointment-dashboard/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records operator actions. Recording failures are logged and never returned,
// so an unavailable audit store cannot break an export or a refresh.
type AuditService interface {
	LogExport(ctx context.Context, requestID string, format ExportFormat, columns string, records int)
	LogRefresh(ctx context.Context, requestID string, result *RefreshResult)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogExport logs a dashboard export
func (s *auditService) LogExport(ctx context.Context, requestID string, format ExportFormat, columns string, records int) {
	s.create(ctx, requestID, entity.AuditActionDashboardExport, entity.JSON{
		"format":  string(format),
		"columns": columns,
		"records": records,
	})
}

// LogRefresh logs a manual feed refresh and whether its snapshot was applied
func (s *auditService) LogRefresh(ctx context.Context, requestID string, result *RefreshResult) {
	metadata := entity.JSON{}
	if result != nil && result.Snapshot != nil {
		metadata["applied"] = result.Applied
		metadata["sequence"] = result.Snapshot.Sequence
		metadata["fetch_id"] = result.Snapshot.FetchID
		metadata["source"] = string(result.Snapshot.Source)
		metadata["records"] = len(result.Snapshot.Appointments)
	}
	s.create(ctx, requestID, entity.AuditActionFeedRefresh, metadata)
}

func (s *auditService) create(ctx context.Context, requestID, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		RequestID: requestID,
		Action:    action,
		Metadata:  metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
	}
}

type noopAuditService struct{}

// NewNoopAuditService is used when no audit database is configured.
func NewNoopAuditService() AuditService {
	return noopAuditService{}
}

func (noopAuditService) LogExport(context.Context, string, ExportFormat, string, int) {}

func (noopAuditService) LogRefresh(context.Context, string, *RefreshResult) {}
