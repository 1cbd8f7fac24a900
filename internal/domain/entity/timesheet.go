package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/billing"
)

// Estados de la hoja de horas: draft → submitted → approved | rejected.
const (
	TimesheetStatusDraft     = "draft"
	TimesheetStatusSubmitted = "submitted"
	TimesheetStatusApproved  = "approved"
	TimesheetStatusRejected  = "rejected"
)

// RejectedNotePrefix prefijo de las notas al rechazar con motivo.
const RejectedNotePrefix = "[REJECTED] "

var maxHoursPerDay = decimal.NewFromInt(24)

// Timesheet registro de horas de un consultor en un proyecto.
// Una vez enlazado a una factura (InvoiceID no vacío) es inmutable.
type Timesheet struct {
	ID             string
	ProjectID      string
	ConsultantID   string
	InvoiceID      string
	WorkDate       time.Time
	HoursLogged    decimal.Decimal
	BillingRate    decimal.Decimal
	BillableAmount decimal.Decimal
	IsBillable     bool
	Notes          string
	Status         string
	SubmittedAt    *time.Time
	ApprovedBy     string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateHours 0 < h ≤ 24.
func ValidateHours(hours decimal.Decimal) error {
	if !hours.IsPositive() || hours.GreaterThan(maxHoursPerDay) {
		return fmt.Errorf("%w: hours_logged debe estar en (0, 24], recibido %s", domain.ErrOutOfRange, hours.String())
	}
	return nil
}

// ValidateRate tarifa estrictamente positiva.
func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: billing_rate debe ser mayor que 0", domain.ErrOutOfRange)
	}
	return nil
}

// ValidateWithin verifica que work_date caiga dentro de las fechas del proyecto.
func (t *Timesheet) ValidateWithin(p *Project) error {
	if !p.Covers(t.WorkDate) {
		return fmt.Errorf("%w: work_date %s fuera de las fechas del proyecto [%s, %s]",
			domain.ErrOutOfRange, t.WorkDate.Format(time.DateOnly),
			p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly))
	}
	return nil
}

// Recalculate billable_amount = round(hours × rate) o 0 si no es facturable.
func (t *Timesheet) Recalculate() {
	t.BillableAmount = billing.BillableAmount(t.HoursLogged, t.BillingRate, t.IsBillable)
}

// Invoiced indica si ya fue consumida por una factura.
func (t *Timesheet) Invoiced() bool { return t.InvoiceID != "" }

func (t *Timesheet) require(status string) error {
	if t.Invoiced() {
		return fmt.Errorf("%w: timesheet %s ya fue facturada en %s", domain.ErrInvalidState, t.ID, t.InvoiceID)
	}
	if t.Status != status {
		return invalidTransition("timesheet", t.ID, t.Status, status)
	}
	return nil
}

// EnsureEditable solo draft y no facturada.
func (t *Timesheet) EnsureEditable() error { return t.require(TimesheetStatusDraft) }

// Submit draft → submitted.
func (t *Timesheet) Submit(now time.Time) error {
	if err := t.require(TimesheetStatusDraft); err != nil {
		return err
	}
	t.Status = TimesheetStatusSubmitted
	t.SubmittedAt = timePtr(now)
	t.UpdatedAt = now
	return nil
}

// Approve submitted → approved.
func (t *Timesheet) Approve(approverID string, now time.Time) error {
	if err := t.require(TimesheetStatusSubmitted); err != nil {
		return err
	}
	t.Status = TimesheetStatusApproved
	t.ApprovedBy = approverID
	t.ApprovedAt = timePtr(now)
	t.UpdatedAt = now
	return nil
}

// Reject submitted → rejected; el motivo, si hay, reemplaza las notas.
func (t *Timesheet) Reject(reason string, now time.Time) error {
	if err := t.require(TimesheetStatusSubmitted); err != nil {
		return err
	}
	t.Status = TimesheetStatusRejected
	if reason != "" {
		t.Notes = RejectedNotePrefix + reason
	}
	t.UpdatedAt = now
	return nil
}
