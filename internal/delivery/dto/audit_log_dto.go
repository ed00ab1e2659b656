package dto

import (
	"time"

	"appointment-dashboard/internal/domain/entity"
)

// Request DTOs

type AuditLogQuery struct {
	Action string `json:"action" validate:"omitempty,oneof=dashboard.export feed.refresh"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=500"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	RequestID string      `json:"request_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
