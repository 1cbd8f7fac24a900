package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest body para POST /api/v1/invoices.
// ClientID vacío toma el cliente del SOW del proyecto; InvoiceDate vacío = hoy.
type GenerateInvoiceRequest struct {
	ProjectID   string `json:"project_id"`
	ClientID    string `json:"client_id,omitempty"`
	InvoiceDate string `json:"invoice_date,omitempty"`
}

// MarkPaidRequest body para POST /api/v1/invoices/:id/mark-paid. Vacío = hoy.
type MarkPaidRequest struct {
	PaymentDate string `json:"payment_date,omitempty"`
}

// InvoiceListRequest filtros de GET /api/v1/invoices.
type InvoiceListRequest struct {
	PageRequest
	ClientID  string `query:"client_id"`
	ProjectID string `query:"project_id"`
	Status    string `query:"status"`
	From      string `query:"from"`
	To        string `query:"to"`
}

// InvoiceResponse cabecera de factura; Lines solo en el detalle.
type InvoiceResponse struct {
	ID             string             `json:"id"`
	ClientID       string             `json:"client_id"`
	ProjectID      string             `json:"project_id,omitempty"`
	InvoiceNumber  string             `json:"invoice_number"`
	InvoiceDate    string             `json:"invoice_date"`
	DueDate        string             `json:"due_date,omitempty"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Status         string             `json:"status"`
	PaymentDate    string             `json:"payment_date,omitempty"`
	DaysOverdue    int                `json:"days_overdue"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Lines          []LineItemResponse `json:"line_items,omitempty"`
}

// LineItemResponse línea de factura.
type LineItemResponse struct {
	ID          string          `json:"id"`
	TimesheetID string          `json:"timesheet_id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceValidationResponse resultado de GET /api/v1/invoices/:id/validate.
type InvoiceValidationResponse struct {
	InvoiceID string `json:"invoice_id"`
	Valid     bool   `json:"valid"`
}
