package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain"
)

// Estados de la factura: draft → sent → paid. También se permite draft → paid.
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
)

// Invoice cabecera de factura generada desde timesheets aprobadas.
// total_amount = round(subtotal + tax_amount − discount_amount, 2).
type Invoice struct {
	ID             string
	ClientID       string
	ProjectID      string // opcional
	InvoiceNumber  string // INV-YYYYMMDD-NNNN, único
	InvoiceDate    time.Time
	DueDate        *time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Status         string
	PaymentDate    *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LineItem una línea por timesheet facturada. line_total = round(quantity × unit_price).
type LineItem struct {
	ID          string
	InvoiceID   string
	TimesheetID string
	LineNumber  int // posición en la factura, desde 1
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Send draft → sent.
func (i *Invoice) Send(now time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return invalidTransition("factura", i.ID, i.Status, InvoiceStatusDraft)
	}
	i.Status = InvoiceStatusSent
	i.UpdatedAt = now
	return nil
}

// MarkPaid cualquier estado no pagado → paid, registrando la fecha de pago.
func (i *Invoice) MarkPaid(paymentDate, now time.Time) error {
	if i.Status == InvoiceStatusPaid {
		return fmt.Errorf("%w: la factura %s ya está pagada", domain.ErrInvalidState, i.InvoiceNumber)
	}
	i.Status = InvoiceStatusPaid
	i.PaymentDate = timePtr(DateOnly(paymentDate))
	i.UpdatedAt = now
	return nil
}
