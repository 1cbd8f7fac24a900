package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, client_id, project_id, invoice_number, invoice_date, due_date, subtotal, tax_amount,
	discount_amount, total_amount, status, payment_date, created_by, created_at, updated_at`

const lineItemColumns = `id, invoice_id, timesheet_id, line_number, description, quantity, unit_price, line_total`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                  entity.Invoice
		projectID, createdBy *string
	)
	err := row.Scan(&inv.ID, &inv.ClientID, &projectID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount, &inv.Status, &inv.PaymentDate,
		&createdBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.ProjectID, inv.CreatedBy = deref(projectID), deref(createdBy)
	return &inv, nil
}

// NextSequence toma un advisory lock de la transacción para el prefijo y cuenta las facturas existentes.
// Debe llamarse dentro de una tx: el lock se libera en el commit/rollback.
func (r *InvoiceRepo) NextSequence(ctx context.Context, numberPrefix string) (int, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, numberPrefix); err != nil {
		return 0, fmt.Errorf("lock invoice sequence: %w", err)
	}
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE starts_with(invoice_number, $1)`, numberPrefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n + 1, nil
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.ClientID, nullIfEmpty(inv.ProjectID), inv.InvoiceNumber, inv.InvoiceDate, inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount, inv.Status, inv.PaymentDate,
		nullIfEmpty(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura %s", domain.ErrAlreadyExists, inv.InvoiceNumber)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente o proyecto de la factura %s", domain.ErrNotFound, inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLineItem persiste una línea de la factura.
func (r *InvoiceRepo) CreateLineItem(ctx context.Context, item *entity.LineItem) error {
	query := `INSERT INTO invoice_line_items (` + lineItemColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InvoiceID, nullIfEmpty(item.TimesheetID), item.LineNumber, item.Description,
		item.Quantity, item.UnitPrice, item.LineTotal,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, item.InvoiceID)
		}
		return fmt.Errorf("insert invoice line item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLineItems devuelve las líneas en orden de línea.
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID string) ([]*entity.LineItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+lineItemColumns+` FROM invoice_line_items WHERE invoice_id = $1 ORDER BY line_number`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice line items: %w", err)
	}
	defer rows.Close()
	list := []*entity.LineItem{}
	for rows.Next() {
		var (
			li          entity.LineItem
			timesheetID *string
		)
		if err := rows.Scan(&li.ID, &li.InvoiceID, &timesheetID, &li.LineNumber, &li.Description,
			&li.Quantity, &li.UnitPrice, &li.LineTotal); err != nil {
			return nil, fmt.Errorf("scan invoice line item: %w", err)
		}
		li.TimesheetID = deref(timesheetID)
		list = append(list, &li)
	}
	return list, rows.Err()
}

// List lista facturas con la fecha más reciente primero.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter, limit, offset int) ([]*entity.Invoice, int, error) {
	var w where
	w.addIf(f.ClientID != "", "client_id = ?", f.ClientID)
	w.addIf(f.ProjectID != "", "project_id = ?", f.ProjectID)
	w.addIf(f.Status != "", "status = ?", f.Status)
	if f.From != nil {
		w.add("invoice_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("invoice_date <= ?", *f.To)
	}
	total, err := w.count(ctx, r.q, "invoices")
	if err != nil {
		return nil, 0, err
	}
	pageSQL, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices`+w.sql()+` ORDER BY invoice_date DESC, invoice_number DESC`+pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := []*entity.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// Update persiste estado y fechas de pago con compare-and-set.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice, expectedStatus string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = $3, due_date = $4, payment_date = $5, updated_at = $6
		WHERE id = $1 AND status = $2`,
		inv.ID, expectedStatus, inv.Status, inv.DueDate, inv.PaymentDate, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return casResult(ctx, r.q, tag, "invoices", "factura", inv.ID, expectedStatus)
}
