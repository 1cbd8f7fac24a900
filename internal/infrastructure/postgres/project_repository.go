package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

const projectColumns = `id, sow_id, name, description, status, start_date, end_date, budget, created_by, created_at, updated_at`

// ProjectRepo implementación de ProjectRepository (usable con pool o tx).
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var (
		p         entity.Project
		createdBy *string
	)
	err := row.Scan(&p.ID, &p.SOWID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate,
		&p.Budget, &createdBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = deref(createdBy)
	return &p, nil
}

// Create persiste el proyecto; sow_id es único (un proyecto por SOW).
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SOWID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate, p.Budget,
		nullIfEmpty(p.CreatedBy), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe un proyecto para el SOW %s", domain.ErrAlreadyExists, p.SOWID)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) getOne(ctx context.Context, cond string, arg string) (*entity.Project, error) {
	p, err := scanProject(r.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE `+cond+` = $1`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// GetByID obtiene un proyecto por ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySOWID obtiene el proyecto creado desde un SOW.
func (r *ProjectRepo) GetBySOWID(ctx context.Context, sowID string) (*entity.Project, error) {
	return r.getOne(ctx, "sow_id", sowID)
}

// List lista proyectos más recientes primero.
func (r *ProjectRepo) List(ctx context.Context, f repository.ProjectFilter, limit, offset int) ([]*entity.Project, int, error) {
	var w where
	w.addIf(f.Status != "", "status = ?", f.Status)
	total, err := w.count(ctx, r.q, "projects")
	if err != nil {
		return nil, 0, err
	}
	pageSQL, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+projectColumns+` FROM projects`+w.sql()+` ORDER BY created_at DESC, id`+pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	list := []*entity.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Update persiste descripción y estado con compare-and-set.
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project, expectedStatus string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE projects SET description = $3, status = $4, updated_at = $5
		WHERE id = $1 AND status = $2`,
		p.ID, expectedStatus, p.Description, p.Status, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return casResult(ctx, r.q, tag, "projects", "proyecto", p.ID, expectedStatus)
}

// Totals agrega horas (todas) y monto facturable (aprobadas) de las timesheets del proyecto.
func (r *ProjectRepo) Totals(ctx context.Context, projectID string) (repository.ProjectTotals, error) {
	var out repository.ProjectTotals
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(hours_logged), 0),
		       COALESCE(SUM(billable_amount) FILTER (WHERE status = $2), 0)
		FROM timesheets WHERE project_id = $1`,
		projectID, entity.TimesheetStatusApproved,
	).Scan(&out.TotalHours, &out.ApprovedBillable)
	if err != nil {
		return out, fmt.Errorf("project totals: %w", err)
	}
	return out, nil
}
