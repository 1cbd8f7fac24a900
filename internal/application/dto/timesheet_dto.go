package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTimesheetRequest body para POST /api/v1/timesheets.
// IsBillable nil equivale a true.
type CreateTimesheetRequest struct {
	ProjectID    string          `json:"project_id"`
	ConsultantID string          `json:"consultant_id,omitempty"`
	WorkDate     string          `json:"work_date"`
	HoursLogged  decimal.Decimal `json:"hours_logged"`
	BillingRate  decimal.Decimal `json:"billing_rate"`
	IsBillable   *bool           `json:"is_billable,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// UpdateTimesheetRequest body para PUT /api/v1/timesheets/:id. Solo cambian los campos enviados.
type UpdateTimesheetRequest struct {
	WorkDate    *string          `json:"work_date,omitempty"`
	HoursLogged *decimal.Decimal `json:"hours_logged,omitempty"`
	BillingRate *decimal.Decimal `json:"billing_rate,omitempty"`
	IsBillable  *bool            `json:"is_billable,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

// RejectTimesheetRequest body para POST /api/v1/timesheets/:id/reject.
type RejectTimesheetRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TimesheetFilterRequest filtros de listado y resumen. Fechas YYYY-MM-DD.
type TimesheetFilterRequest struct {
	ProjectID    string `query:"project_id"`
	ConsultantID string `query:"consultant_id"`
	Status       string `query:"status"`
	From         string `query:"from"`
	To           string `query:"to"`
}

// TimesheetListRequest filtros + paginación de GET /api/v1/timesheets.
type TimesheetListRequest struct {
	PageRequest
	TimesheetFilterRequest
}

// TimesheetResponse timesheet en respuestas.
type TimesheetResponse struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"project_id"`
	ConsultantID   string          `json:"consultant_id"`
	InvoiceID      string          `json:"invoice_id,omitempty"`
	WorkDate       string          `json:"work_date"`
	HoursLogged    decimal.Decimal `json:"hours_logged"`
	BillingRate    decimal.Decimal `json:"billing_rate"`
	BillableAmount decimal.Decimal `json:"billable_amount"`
	IsBillable     bool            `json:"is_billable"`
	Notes          string          `json:"notes,omitempty"`
	Status         string          `json:"status"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	ApprovedBy     string          `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TimesheetSummaryResponse GET /api/v1/timesheets/summary.
type TimesheetSummaryResponse struct {
	TotalHours    decimal.Decimal `json:"total_hours"`
	TotalBillable decimal.Decimal `json:"total_billable"`
	EntryCount    int             `json:"entry_count"`
}
