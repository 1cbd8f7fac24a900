package dto

import "time"

// AuditLogListRequest filtros de GET /api/v1/audit-logs.
type AuditLogListRequest struct {
	PageRequest
	EntityType string `query:"entity_type"`
	EntityID   string `query:"entity_id"`
	UserID     string `query:"user_id"`
	Action     string `query:"action"`
}

// AuditLogResponse entrada de auditoría con valores decodificados.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
