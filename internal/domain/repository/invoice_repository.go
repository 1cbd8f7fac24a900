package repository

import (
	"context"
	"time"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// InvoiceFilter filtros de listado de facturas.
type InvoiceFilter struct {
	ClientID  string
	ProjectID string
	Status    string
	From      *time.Time // invoice_date >= From
	To        *time.Time // invoice_date <= To
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// NextSequence serializa la numeración para el prefijo dado (dentro de la transacción)
	// y devuelve 1 + cantidad de facturas existentes con ese prefijo.
	NextSequence(ctx context.Context, numberPrefix string) (int, error)
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLineItem(ctx context.Context, item *entity.LineItem) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLineItems(ctx context.Context, invoiceID string) ([]*entity.LineItem, error)
	List(ctx context.Context, filter InvoiceFilter, limit, offset int) ([]*entity.Invoice, int, error)
	// Update persiste estado y fechas con compare-and-set sobre expectedStatus.
	Update(ctx context.Context, invoice *entity.Invoice, expectedStatus string) error
}
