package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/billing"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// ProjectUseCase ciclo de vida del proyecto: in_progress → closed, sin reapertura.
type ProjectUseCase struct {
	tx    repository.TxRunner
	audit *audit.Recorder
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(tx repository.TxRunner, recorder *audit.Recorder) *ProjectUseCase {
	return &ProjectUseCase{tx: tx, audit: recorder}
}

// CreateFromSOW deriva el proyecto de un SOW aprobado. Un SOW admite un solo proyecto.
func (uc *ProjectUseCase) CreateFromSOW(ctx context.Context, userID, sowID string) (*dto.ProjectResponse, error) {
	if sowID == "" {
		return nil, fmt.Errorf("%w: sow_id es obligatorio", domain.ErrInvalidInput)
	}
	var project *entity.Project
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		sow, err := repository.FindSOW(ctx, repos.SOWs, sowID)
		if err != nil {
			return err
		}
		project, err = entity.NewProjectFromSOW(sow, uuid.New().String(), userID, nowUTC())
		if err != nil {
			return err
		}
		existing, err := repos.Projects.GetBySOWID(ctx, sowID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: el SOW %s ya tiene el proyecto %s", domain.ErrAlreadyExists, sowID, existing.ID)
		}
		if err := repos.Projects.Create(ctx, project); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionCreate,
			EntityType:  entity.EntityProject,
			EntityID:    project.ID,
			NewValues:   projectValues(project),
			Description: fmt.Sprintf("Created project from SOW: %s", sow.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// UpdateDescription cambia la descripción de un proyecto abierto.
func (uc *ProjectUseCase) UpdateDescription(ctx context.Context, userID, id, description string) (*dto.ProjectResponse, error) {
	var project *entity.Project
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if project, err = repository.FindProject(ctx, repos.Projects, id); err != nil {
			return err
		}
		if err := project.EnsureOpen(); err != nil {
			return err
		}
		old := project.Description
		project.Description = description
		project.UpdatedAt = nowUTC()
		if err := repos.Projects.Update(ctx, project, entity.ProjectStatusInProgress); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionUpdate,
			EntityType:  entity.EntityProject,
			EntityID:    project.ID,
			OldValues:   audit.Values{"description": old},
			NewValues:   audit.Values{"description": description},
			Description: "Updated project description",
		})
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// Close in_progress → closed. Las notas quedan en la descripción de la auditoría.
func (uc *ProjectUseCase) Close(ctx context.Context, userID, id, notes string) (*dto.ProjectResponse, error) {
	var project *entity.Project
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if project, err = repository.FindProject(ctx, repos.Projects, id); err != nil {
			return err
		}
		from := project.Status
		if err := project.Close(nowUTC()); err != nil {
			return err
		}
		if err := repos.Projects.Update(ctx, project, from); err != nil {
			return err
		}
		description := "Closed project"
		if notes != "" {
			description += ": " + notes
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionClose,
			EntityType:  entity.EntityProject,
			EntityID:    project.ID,
			OldValues:   statusValues(from),
			NewValues:   statusValues(project.Status),
			Description: description,
		})
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// Summary horas registradas y monto aprobado vs presupuesto. allocatedHours
// cero deja hours_percentage en 0.
func (uc *ProjectUseCase) Summary(ctx context.Context, id string, allocatedHours decimal.Decimal) (*dto.ProjectSummaryResponse, error) {
	if allocatedHours.IsNegative() {
		return nil, fmt.Errorf("%w: allocated_hours no puede ser negativo", domain.ErrOutOfRange)
	}
	var (
		project *entity.Project
		totals  repository.ProjectTotals
	)
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if project, err = repository.FindProject(ctx, repos.Projects, id); err != nil {
			return err
		}
		totals, err = repos.Projects.Totals(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProjectSummaryResponse{
		ProjectID:        project.ID,
		Name:             project.Name,
		Status:           project.Status,
		Budget:           project.Budget,
		TotalHours:       totals.TotalHours,
		BillableAmount:   billing.Round(totals.ApprovedBillable),
		BudgetPercentage: billing.Percentage(totals.ApprovedBillable, project.Budget),
		AllocatedHours:   allocatedHours,
		HoursPercentage:  billing.Percentage(totals.TotalHours, allocatedHours),
	}, nil
}

// Get proyecto por id.
func (uc *ProjectUseCase) Get(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	var project *entity.Project
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		project, err = repository.FindProject(ctx, repos.Projects, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// List lista proyectos filtrando por estado.
func (uc *ProjectUseCase) List(ctx context.Context, in dto.ProjectListRequest) (*dto.ListResponse[dto.ProjectResponse], error) {
	in.DefaultPage()
	var (
		list  []*entity.Project
		total int
	)
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Projects.List(ctx, repository.ProjectFilter{Status: in.Status}, in.Limit, in.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.ProjectResponse]{
		Items: make([]dto.ProjectResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, p := range list {
		out.Items = append(out.Items, *toProjectResponse(p))
	}
	return out, nil
}
