package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

var _ repository.SOWRepository = (*SOWRepo)(nil)

const sowColumns = `id, client_id, title, description, start_date, end_date, rate, total_budget, status,
	created_by, approved_by, approved_at, created_at, updated_at`

// SOWRepo implementación de SOWRepository (usable con pool o tx).
type SOWRepo struct {
	q Querier
}

// NewSOWRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSOWRepository(q Querier) *SOWRepo {
	return &SOWRepo{q: q}
}

func scanSOW(row pgx.Row) (*entity.SOW, error) {
	var (
		s                     entity.SOW
		createdBy, approvedBy *string
	)
	err := row.Scan(&s.ID, &s.ClientID, &s.Title, &s.Description, &s.StartDate, &s.EndDate,
		&s.Rate, &s.TotalBudget, &s.Status, &createdBy, &approvedBy, &s.ApprovedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.CreatedBy, s.ApprovedBy = deref(createdBy), deref(approvedBy)
	return &s, nil
}

// Create persiste un nuevo SOW.
func (r *SOWRepo) Create(ctx context.Context, s *entity.SOW) error {
	query := `INSERT INTO sows (` + sowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.ClientID, s.Title, s.Description, s.StartDate, s.EndDate, s.Rate, s.TotalBudget, s.Status,
		nullIfEmpty(s.CreatedBy), nullIfEmpty(s.ApprovedBy), s.ApprovedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sow: %w", err)
	}
	return nil
}

// GetByID obtiene un SOW por ID.
func (r *SOWRepo) GetByID(ctx context.Context, id string) (*entity.SOW, error) {
	s, err := scanSOW(r.q.QueryRow(ctx, `SELECT `+sowColumns+` FROM sows WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sow: %w", err)
	}
	return s, nil
}

// List lista SOWs más recientes primero.
func (r *SOWRepo) List(ctx context.Context, f repository.SOWFilter, limit, offset int) ([]*entity.SOW, int, error) {
	var w where
	w.addIf(f.Status != "", "status = ?", f.Status)
	w.addIf(f.ClientID != "", "client_id = ?", f.ClientID)
	total, err := w.count(ctx, r.q, "sows")
	if err != nil {
		return nil, 0, err
	}
	pageSQL, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+sowColumns+` FROM sows`+w.sql()+` ORDER BY created_at DESC, id`+pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sows: %w", err)
	}
	defer rows.Close()
	list := []*entity.SOW{}
	for rows.Next() {
		s, err := scanSOW(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sow: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Update persiste el SOW con compare-and-set sobre el estado esperado.
func (r *SOWRepo) Update(ctx context.Context, s *entity.SOW, expectedStatus string) error {
	query := `
		UPDATE sows SET title = $3, description = $4, start_date = $5, end_date = $6, rate = $7,
		       total_budget = $8, status = $9, approved_by = $10, approved_at = $11, updated_at = $12
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query,
		s.ID, expectedStatus, s.Title, s.Description, s.StartDate, s.EndDate, s.Rate, s.TotalBudget,
		s.Status, nullIfEmpty(s.ApprovedBy), s.ApprovedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sow: %w", err)
	}
	return casResult(ctx, r.q, tag, "sows", "SOW", s.ID, expectedStatus)
}
