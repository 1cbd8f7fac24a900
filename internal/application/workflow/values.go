// Package workflow contiene las máquinas de estado de SOW, proyecto y timesheet.
// Cada operación corre en una transacción junto con su entrada de auditoría.
package workflow

import (
	"time"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

func sowValues(s *entity.SOW) audit.Values {
	return audit.Values{
		"client_id":    s.ClientID,
		"title":        s.Title,
		"description":  s.Description,
		"start_date":   dto.FormatDate(s.StartDate),
		"end_date":     dto.FormatDate(s.EndDate),
		"rate":         s.Rate.String(),
		"total_budget": s.TotalBudget.String(),
		"status":       s.Status,
	}
}

func projectValues(p *entity.Project) audit.Values {
	return audit.Values{
		"sow_id":      p.SOWID,
		"name":        p.Name,
		"description": p.Description,
		"start_date":  dto.FormatDate(p.StartDate),
		"end_date":    dto.FormatDate(p.EndDate),
		"budget":      p.Budget.String(),
		"status":      p.Status,
	}
}

func timesheetValues(t *entity.Timesheet) audit.Values {
	return audit.Values{
		"project_id":      t.ProjectID,
		"consultant_id":   t.ConsultantID,
		"work_date":       dto.FormatDate(t.WorkDate),
		"hours_logged":    t.HoursLogged.String(),
		"billing_rate":    t.BillingRate.String(),
		"billable_amount": t.BillableAmount.String(),
		"is_billable":     t.IsBillable,
		"notes":           t.Notes,
		"status":          t.Status,
	}
}

func statusValues(status string) audit.Values {
	return audit.Values{"status": status}
}

func toSOWResponse(s *entity.SOW) *dto.SOWResponse {
	return &dto.SOWResponse{
		ID:          s.ID,
		ClientID:    s.ClientID,
		Title:       s.Title,
		Description: s.Description,
		StartDate:   dto.FormatDate(s.StartDate),
		EndDate:     dto.FormatDate(s.EndDate),
		Rate:        s.Rate,
		TotalBudget: s.TotalBudget,
		Status:      s.Status,
		CreatedBy:   s.CreatedBy,
		ApprovedBy:  s.ApprovedBy,
		ApprovedAt:  s.ApprovedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:          p.ID,
		SOWID:       p.SOWID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   dto.FormatDate(p.StartDate),
		EndDate:     dto.FormatDate(p.EndDate),
		Budget:      p.Budget,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toTimesheetResponse(t *entity.Timesheet) *dto.TimesheetResponse {
	return &dto.TimesheetResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		ConsultantID:   t.ConsultantID,
		InvoiceID:      t.InvoiceID,
		WorkDate:       dto.FormatDate(t.WorkDate),
		HoursLogged:    t.HoursLogged,
		BillingRate:    t.BillingRate,
		BillableAmount: t.BillableAmount,
		IsBillable:     t.IsBillable,
		Notes:          t.Notes,
		Status:         t.Status,
		SubmittedAt:    t.SubmittedAt,
		ApprovedBy:     t.ApprovedBy,
		ApprovedAt:     t.ApprovedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func nowUTC() time.Time { return time.Now().UTC() }
