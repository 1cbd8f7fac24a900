package billing

import (
	"context"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// InvoiceDocument datos completos para renderizar una factura.
type InvoiceDocument struct {
	Invoice *entity.Invoice
	Client  *entity.Client
	Project *entity.Project // nil si la factura no tiene proyecto
	Lines   []*entity.LineItem
}

// InvoicePDFGenerator puerto para generar el PDF de una factura (implementación en infrastructure/pdf).
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
