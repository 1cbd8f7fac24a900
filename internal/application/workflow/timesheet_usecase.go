package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// TimesheetUseCase flujo de horas: draft → submitted → approved | rejected.
// La política de roles (quién aprueba, quién edita qué) la aplica el caller.
type TimesheetUseCase struct {
	tx    repository.TxRunner
	audit *audit.Recorder
}

// NewTimesheetUseCase construye el caso de uso.
func NewTimesheetUseCase(tx repository.TxRunner, recorder *audit.Recorder) *TimesheetUseCase {
	return &TimesheetUseCase{tx: tx, audit: recorder}
}

// Create registra horas en draft. ConsultantID vacío usa al usuario que crea.
func (uc *TimesheetUseCase) Create(ctx context.Context, userID string, in dto.CreateTimesheetRequest) (*dto.TimesheetResponse, error) {
	if in.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id es obligatorio", domain.ErrInvalidInput)
	}
	workDate, err := dto.ParseDate("work_date", in.WorkDate)
	if err != nil {
		return nil, err
	}
	consultantID := in.ConsultantID
	if consultantID == "" {
		consultantID = userID
	}
	billable := true
	if in.IsBillable != nil {
		billable = *in.IsBillable
	}
	now := nowUTC()
	ts := &entity.Timesheet{
		ID:           uuid.New().String(),
		ProjectID:    in.ProjectID,
		ConsultantID: consultantID,
		WorkDate:     workDate,
		HoursLogged:  in.HoursLogged,
		BillingRate:  in.BillingRate,
		IsBillable:   billable,
		Notes:        in.Notes,
		Status:       entity.TimesheetStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		project, err := repository.FindProject(ctx, repos.Projects, in.ProjectID)
		if err != nil {
			return err
		}
		if err := validateEntry(ts, project); err != nil {
			return err
		}
		ts.Recalculate()
		if err := repos.Timesheets.Create(ctx, ts); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionCreate,
			EntityType:  entity.EntityTimesheet,
			EntityID:    ts.ID,
			NewValues:   timesheetValues(ts),
			Description: fmt.Sprintf("Timesheet entry created for %s: %s hours", dto.FormatDate(ts.WorkDate), ts.HoursLogged),
		})
	})
	if err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts), nil
}

func validateEntry(ts *entity.Timesheet, project *entity.Project) error {
	if err := ts.ValidateWithin(project); err != nil {
		return err
	}
	if err := entity.ValidateHours(ts.HoursLogged); err != nil {
		return err
	}
	return entity.ValidateRate(ts.BillingRate)
}

// Update aplica los campos enviados sobre una timesheet en draft y recalcula billable_amount.
func (uc *TimesheetUseCase) Update(ctx context.Context, userID, id string, in dto.UpdateTimesheetRequest) (*dto.TimesheetResponse, error) {
	var ts *entity.Timesheet
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if ts, err = repository.FindTimesheet(ctx, repos.Timesheets, id); err != nil {
			return err
		}
		if err := ts.EnsureEditable(); err != nil {
			return err
		}
		before := timesheetValues(ts)
		if in.WorkDate != nil {
			if ts.WorkDate, err = dto.ParseDate("work_date", *in.WorkDate); err != nil {
				return err
			}
		}
		if in.HoursLogged != nil {
			ts.HoursLogged = *in.HoursLogged
		}
		if in.BillingRate != nil {
			ts.BillingRate = *in.BillingRate
		}
		if in.IsBillable != nil {
			ts.IsBillable = *in.IsBillable
		}
		if in.Notes != nil {
			ts.Notes = *in.Notes
		}
		project, err := repository.FindProject(ctx, repos.Projects, ts.ProjectID)
		if err != nil {
			return err
		}
		if err := validateEntry(ts, project); err != nil {
			return err
		}
		ts.Recalculate()
		ts.UpdatedAt = nowUTC()
		if err := repos.Timesheets.Update(ctx, ts, entity.TimesheetStatusDraft); err != nil {
			return err
		}
		oldValues, newValues := audit.Diff(before, timesheetValues(ts))
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionUpdate,
			EntityType:  entity.EntityTimesheet,
			EntityID:    ts.ID,
			OldValues:   oldValues,
			NewValues:   newValues,
			Description: "Timesheet entry updated",
		})
	})
	if err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts), nil
}

// Submit draft → submitted.
func (uc *TimesheetUseCase) Submit(ctx context.Context, userID, id string) (*dto.TimesheetResponse, error) {
	return uc.transition(ctx, userID, id, entity.AuditActionSubmit, func(ts *entity.Timesheet, now time.Time) (string, error) {
		return "Timesheet submitted for approval", ts.Submit(now)
	})
}

// Approve submitted → approved.
func (uc *TimesheetUseCase) Approve(ctx context.Context, approverID, id string) (*dto.TimesheetResponse, error) {
	return uc.transition(ctx, approverID, id, entity.AuditActionApprove, func(ts *entity.Timesheet, now time.Time) (string, error) {
		return "Timesheet approved", ts.Approve(approverID, now)
	})
}

// Reject submitted → rejected. El motivo, si hay, queda en las notas.
func (uc *TimesheetUseCase) Reject(ctx context.Context, approverID, id, reason string) (*dto.TimesheetResponse, error) {
	return uc.transition(ctx, approverID, id, entity.AuditActionReject, func(ts *entity.Timesheet, now time.Time) (string, error) {
		if err := ts.Reject(reason, now); err != nil {
			return "", err
		}
		if reason != "" {
			return "Timesheet rejected: " + reason, nil
		}
		return "Timesheet rejected", nil
	})
}

func (uc *TimesheetUseCase) transition(ctx context.Context, userID, id, action string, apply func(*entity.Timesheet, time.Time) (string, error)) (*dto.TimesheetResponse, error) {
	var ts *entity.Timesheet
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if ts, err = repository.FindTimesheet(ctx, repos.Timesheets, id); err != nil {
			return err
		}
		from := ts.Status
		description, err := apply(ts, nowUTC())
		if err != nil {
			return err
		}
		if err := repos.Timesheets.Update(ctx, ts, from); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      action,
			EntityType:  entity.EntityTimesheet,
			EntityID:    ts.ID,
			OldValues:   statusValues(from),
			NewValues:   statusValues(ts.Status),
			Description: description,
		})
	})
	if err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts), nil
}

// Get timesheet por id.
func (uc *TimesheetUseCase) Get(ctx context.Context, id string) (*dto.TimesheetResponse, error) {
	var ts *entity.Timesheet
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		ts, err = repository.FindTimesheet(ctx, repos.Timesheets, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTimesheetResponse(ts), nil
}

// List lista timesheets por proyecto, consultor, estado y rango de fechas.
func (uc *TimesheetUseCase) List(ctx context.Context, in dto.TimesheetListRequest) (*dto.ListResponse[dto.TimesheetResponse], error) {
	in.DefaultPage()
	filter, err := timesheetFilter(in.TimesheetFilterRequest)
	if err != nil {
		return nil, err
	}
	var (
		list  []*entity.Timesheet
		total int
	)
	err = uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Timesheets.List(ctx, filter, in.Limit, in.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.TimesheetResponse]{
		Items: make([]dto.TimesheetResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, t := range list {
		out.Items = append(out.Items, *toTimesheetResponse(t))
	}
	return out, nil
}

// Summary total de horas, monto facturable y cantidad de entradas para el filtro.
func (uc *TimesheetUseCase) Summary(ctx context.Context, in dto.TimesheetFilterRequest) (*dto.TimesheetSummaryResponse, error) {
	filter, err := timesheetFilter(in)
	if err != nil {
		return nil, err
	}
	var sum repository.TimesheetSummary
	err = uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		sum, err = repos.Timesheets.Summary(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.TimesheetSummaryResponse{
		TotalHours:    sum.TotalHours,
		TotalBillable: sum.TotalBillable,
		EntryCount:    sum.EntryCount,
	}, nil
}

func timesheetFilter(in dto.TimesheetFilterRequest) (repository.TimesheetFilter, error) {
	from, err := dto.ParseOptionalDate("from", in.From)
	if err != nil {
		return repository.TimesheetFilter{}, err
	}
	to, err := dto.ParseOptionalDate("to", in.To)
	if err != nil {
		return repository.TimesheetFilter{}, err
	}
	return repository.TimesheetFilter{
		ProjectID:    in.ProjectID,
		ConsultantID: in.ConsultantID,
		Status:       in.Status,
		From:         from,
		To:           to,
	}, nil
}
