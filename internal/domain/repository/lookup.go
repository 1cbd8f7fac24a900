package repository

import (
	"context"
	"fmt"

	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// Los Get* de los repos devuelven (nil, nil) si no existe; estas funciones lo
// convierten en domain.ErrNotFound con el id en el mensaje.

func notFound[T any](v *T, err error, kind, id string) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return v, nil
}

// FindClient cliente por id o ErrNotFound.
func FindClient(ctx context.Context, r ClientRepository, id string) (*entity.Client, error) {
	c, err := r.GetByID(ctx, id)
	return notFound(c, err, "cliente", id)
}

// FindSOW SOW por id o ErrNotFound.
func FindSOW(ctx context.Context, r SOWRepository, id string) (*entity.SOW, error) {
	s, err := r.GetByID(ctx, id)
	return notFound(s, err, "SOW", id)
}

// FindProject proyecto por id o ErrNotFound.
func FindProject(ctx context.Context, r ProjectRepository, id string) (*entity.Project, error) {
	p, err := r.GetByID(ctx, id)
	return notFound(p, err, "proyecto", id)
}

// FindTimesheet timesheet por id o ErrNotFound.
func FindTimesheet(ctx context.Context, r TimesheetRepository, id string) (*entity.Timesheet, error) {
	t, err := r.GetByID(ctx, id)
	return notFound(t, err, "timesheet", id)
}

// FindInvoice factura por id o ErrNotFound.
func FindInvoice(ctx context.Context, r InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := r.GetByID(ctx, id)
	return notFound(inv, err, "factura", id)
}
