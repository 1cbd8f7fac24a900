package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// SOWUseCase flujo del Statement of Work: draft → pending → approved | rejected.
type SOWUseCase struct {
	tx    repository.TxRunner
	audit *audit.Recorder
}

// NewSOWUseCase construye el caso de uso.
func NewSOWUseCase(tx repository.TxRunner, recorder *audit.Recorder) *SOWUseCase {
	return &SOWUseCase{tx: tx, audit: recorder}
}

// Create crea el SOW en draft. El cliente debe existir.
func (uc *SOWUseCase) Create(ctx context.Context, userID string, in dto.CreateSOWRequest) (*dto.SOWResponse, error) {
	if in.ClientID == "" || strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: client_id y title son obligatorios", domain.ErrInvalidInput)
	}
	start, err := dto.ParseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := dto.ParseDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	now := nowUTC()
	sow := &entity.SOW{
		ID:          uuid.New().String(),
		ClientID:    in.ClientID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		Rate:        in.Rate,
		TotalBudget: in.TotalBudget,
		Status:      entity.SOWStatusDraft,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := sow.ValidateTerms(); err != nil {
		return nil, err
	}
	err = uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		if _, err := repository.FindClient(ctx, repos.Clients, in.ClientID); err != nil {
			return err
		}
		if err := repos.SOWs.Create(ctx, sow); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionCreate,
			EntityType:  entity.EntitySOW,
			EntityID:    sow.ID,
			NewValues:   sowValues(sow),
			Description: fmt.Sprintf("Created SOW: %s", sow.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return toSOWResponse(sow), nil
}

// Update aplica los campos enviados. Solo en draft.
func (uc *SOWUseCase) Update(ctx context.Context, userID, id string, in dto.UpdateSOWRequest) (*dto.SOWResponse, error) {
	var sow *entity.SOW
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if sow, err = repository.FindSOW(ctx, repos.SOWs, id); err != nil {
			return err
		}
		if err := sow.EnsureEditable(); err != nil {
			return err
		}
		before := sowValues(sow)
		if err := applySOWUpdate(sow, in); err != nil {
			return err
		}
		if err := sow.ValidateTerms(); err != nil {
			return err
		}
		sow.UpdatedAt = nowUTC()
		if err := repos.SOWs.Update(ctx, sow, entity.SOWStatusDraft); err != nil {
			return err
		}
		oldValues, newValues := audit.Diff(before, sowValues(sow))
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionUpdate,
			EntityType:  entity.EntitySOW,
			EntityID:    sow.ID,
			OldValues:   oldValues,
			NewValues:   newValues,
			Description: fmt.Sprintf("Updated SOW: %s", sow.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return toSOWResponse(sow), nil
}

func applySOWUpdate(sow *entity.SOW, in dto.UpdateSOWRequest) error {
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return fmt.Errorf("%w: title no puede estar vacío", domain.ErrInvalidInput)
		}
		sow.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		sow.Description = *in.Description
	}
	if in.StartDate != nil {
		start, err := dto.ParseDate("start_date", *in.StartDate)
		if err != nil {
			return err
		}
		sow.StartDate = start
	}
	if in.EndDate != nil {
		end, err := dto.ParseDate("end_date", *in.EndDate)
		if err != nil {
			return err
		}
		sow.EndDate = end
	}
	if in.Rate != nil {
		sow.Rate = *in.Rate
	}
	if in.TotalBudget != nil {
		sow.TotalBudget = *in.TotalBudget
	}
	return nil
}

// Submit draft → pending.
func (uc *SOWUseCase) Submit(ctx context.Context, userID, id string) (*dto.SOWResponse, error) {
	return uc.transition(ctx, userID, id, entity.AuditActionSubmit, func(sow *entity.SOW) (string, error) {
		return "Submitted SOW for approval", sow.Submit(nowUTC())
	})
}

// Approve pending → approved (approved=true) o rejected; sella aprobador y fecha.
// Las notas del aprobador quedan en la descripción de la auditoría.
func (uc *SOWUseCase) Approve(ctx context.Context, approverID, id string, approved bool, notes string) (*dto.SOWResponse, error) {
	action := entity.AuditActionReject
	if approved {
		action = entity.AuditActionApprove
	}
	return uc.transition(ctx, approverID, id, action, func(sow *entity.SOW) (string, error) {
		if err := sow.Decide(approved, approverID, nowUTC()); err != nil {
			return "", err
		}
		description := fmt.Sprintf("SOW %s", sow.Status)
		if notes != "" {
			description += ": " + notes
		}
		return description, nil
	})
}

func (uc *SOWUseCase) transition(ctx context.Context, userID, id, action string, apply func(*entity.SOW) (string, error)) (*dto.SOWResponse, error) {
	var sow *entity.SOW
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if sow, err = repository.FindSOW(ctx, repos.SOWs, id); err != nil {
			return err
		}
		from := sow.Status
		description, err := apply(sow)
		if err != nil {
			return err
		}
		if err := repos.SOWs.Update(ctx, sow, from); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      action,
			EntityType:  entity.EntitySOW,
			EntityID:    sow.ID,
			OldValues:   statusValues(from),
			NewValues:   statusValues(sow.Status),
			Description: description,
		})
	})
	if err != nil {
		return nil, err
	}
	return toSOWResponse(sow), nil
}

// Get SOW por id.
func (uc *SOWUseCase) Get(ctx context.Context, id string) (*dto.SOWResponse, error) {
	var sow *entity.SOW
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		sow, err = repository.FindSOW(ctx, repos.SOWs, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSOWResponse(sow), nil
}

// List lista SOWs filtrando por estado y cliente, más recientes primero.
func (uc *SOWUseCase) List(ctx context.Context, in dto.SOWListRequest) (*dto.ListResponse[dto.SOWResponse], error) {
	in.DefaultPage()
	var (
		list  []*entity.SOW
		total int
	)
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.SOWs.List(ctx, repository.SOWFilter{Status: in.Status, ClientID: in.ClientID}, in.Limit, in.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.SOWResponse]{
		Items: make([]dto.SOWResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, s := range list {
		out.Items = append(out.Items, *toSOWResponse(s))
	}
	return out, nil
}
