package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo implementación append-only de AuditLogRepository.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta una entrada. old_values/new_values son JSONB; vacío se guarda como NULL.
func (r *AuditLogRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, old_values, new_values, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)`,
		e.ID, nullIfEmpty(e.UserID), e.Action, e.EntityType, nullIfEmpty(e.EntityID),
		nullIfEmpty(e.OldValues), nullIfEmpty(e.NewValues), e.Description, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List devuelve las entradas más recientes primero.
func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditLogFilter, limit, offset int) ([]*entity.AuditLogEntry, int, error) {
	var w where
	w.addIf(f.EntityType != "", "entity_type = ?", f.EntityType)
	w.addIf(f.EntityID != "", "entity_id = ?", f.EntityID)
	w.addIf(f.UserID != "", "user_id = ?", f.UserID)
	w.addIf(f.Action != "", "action = ?", f.Action)
	total, err := w.count(ctx, r.q, "audit_logs")
	if err != nil {
		return nil, 0, err
	}
	pageSQL, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, action, entity_type, entity_id, old_values::text, new_values::text, description, created_at
		FROM audit_logs`+w.sql()+` ORDER BY created_at DESC, id`+pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	list := []*entity.AuditLogEntry{}
	for rows.Next() {
		var (
			e                                  entity.AuditLogEntry
			userID, entityID, oldVals, newVals *string
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.EntityType, &entityID, &oldVals, &newVals,
			&e.Description, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		e.UserID, e.EntityID = deref(userID), deref(entityID)
		e.OldValues, e.NewValues = deref(oldVals), deref(newVals)
		list = append(list, &e)
	}
	return list, total, rows.Err()
}
