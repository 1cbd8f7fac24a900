package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// TimesheetFilter filtros de listado y resumen. Campos vacíos no filtran.
type TimesheetFilter struct {
	ProjectID    string
	ConsultantID string
	Status       string
	From         *time.Time // work_date >= From
	To           *time.Time // work_date <= To
}

// TimesheetSummary totales agregados para un filtro.
type TimesheetSummary struct {
	TotalHours    decimal.Decimal
	TotalBillable decimal.Decimal
	EntryCount    int
}

// TimesheetRepository define el puerto de persistencia para Timesheet.
type TimesheetRepository interface {
	Create(ctx context.Context, ts *entity.Timesheet) error
	GetByID(ctx context.Context, id string) (*entity.Timesheet, error)
	List(ctx context.Context, filter TimesheetFilter, limit, offset int) ([]*entity.Timesheet, int, error)
	Summary(ctx context.Context, filter TimesheetFilter) (TimesheetSummary, error)
	// Update con compare-and-set sobre expectedStatus y sin factura asociada.
	Update(ctx context.Context, ts *entity.Timesheet, expectedStatus string) error
	// ListUninvoicedApproved devuelve las aprobadas sin factura del proyecto (bloqueadas
	// para la transacción en curso), ordenadas por work_date.
	ListUninvoicedApproved(ctx context.Context, projectID string) ([]*entity.Timesheet, error)
	// MarkInvoiced enlaza las timesheets a la factura; falla si alguna ya estaba facturada.
	MarkInvoiced(ctx context.Context, ids []string, invoiceID string) error
}
