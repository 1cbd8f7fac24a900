package repository

import (
	"context"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// AuditLogFilter filtros de consulta de auditoría.
type AuditLogFilter struct {
	EntityType string
	EntityID   string
	UserID     string
	Action     string
}

// AuditLogRepository solo inserta y consulta: las entradas nunca se modifican ni borran.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
	// List devuelve las entradas más recientes primero y el total sin paginar.
	List(ctx context.Context, filter AuditLogFilter, limit, offset int) ([]*entity.AuditLogEntry, int, error)
}
