package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// ProjectFilter filtros de listado de proyectos.
type ProjectFilter struct {
	Status string
}

// ProjectTotals agregados de timesheets de un proyecto.
type ProjectTotals struct {
	TotalHours       decimal.Decimal // todas las timesheets
	ApprovedBillable decimal.Decimal // solo aprobadas
}

// ProjectRepository define el puerto de persistencia para Project.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	GetBySOWID(ctx context.Context, sowID string) (*entity.Project, error)
	List(ctx context.Context, filter ProjectFilter, limit, offset int) ([]*entity.Project, int, error)
	// Update con compare-and-set sobre expectedStatus (domain.ErrInvalidState si cambió).
	Update(ctx context.Context, project *entity.Project, expectedStatus string) error
	Totals(ctx context.Context, projectID string) (ProjectTotals, error)
}
