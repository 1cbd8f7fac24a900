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

var _ repository.TimesheetRepository = (*TimesheetRepo)(nil)

const timesheetColumns = `id, project_id, consultant_id, invoice_id, work_date, hours_logged, billing_rate,
	billable_amount, is_billable, notes, status, submitted_at, approved_by, approved_at, created_at, updated_at`

// TimesheetRepo implementación de TimesheetRepository (usable con pool o tx).
type TimesheetRepo struct {
	q Querier
}

// NewTimesheetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTimesheetRepository(q Querier) *TimesheetRepo {
	return &TimesheetRepo{q: q}
}

func scanTimesheet(row pgx.Row) (*entity.Timesheet, error) {
	var (
		t                     entity.Timesheet
		invoiceID, approvedBy *string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.ConsultantID, &invoiceID, &t.WorkDate, &t.HoursLogged,
		&t.BillingRate, &t.BillableAmount, &t.IsBillable, &t.Notes, &t.Status, &t.SubmittedAt,
		&approvedBy, &t.ApprovedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.InvoiceID, t.ApprovedBy = deref(invoiceID), deref(approvedBy)
	return &t, nil
}

func scanTimesheets(rows pgx.Rows) ([]*entity.Timesheet, error) {
	defer rows.Close()
	list := []*entity.Timesheet{}
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timesheet: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func timesheetWhere(f repository.TimesheetFilter) *where {
	w := &where{}
	w.addIf(f.ProjectID != "", "project_id = ?", f.ProjectID)
	w.addIf(f.ConsultantID != "", "consultant_id = ?", f.ConsultantID)
	w.addIf(f.Status != "", "status = ?", f.Status)
	if f.From != nil {
		w.add("work_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("work_date <= ?", *f.To)
	}
	return w
}

// Create persiste una nueva timesheet.
func (r *TimesheetRepo) Create(ctx context.Context, t *entity.Timesheet) error {
	query := `INSERT INTO timesheets (` + timesheetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProjectID, t.ConsultantID, nullIfEmpty(t.InvoiceID), t.WorkDate, t.HoursLogged, t.BillingRate,
		t.BillableAmount, t.IsBillable, t.Notes, t.Status, t.SubmittedAt, nullIfEmpty(t.ApprovedBy), t.ApprovedAt,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, t.ProjectID)
		}
		return fmt.Errorf("insert timesheet: %w", err)
	}
	return nil
}

// GetByID obtiene una timesheet por ID.
func (r *TimesheetRepo) GetByID(ctx context.Context, id string) (*entity.Timesheet, error) {
	t, err := scanTimesheet(r.q.QueryRow(ctx, `SELECT `+timesheetColumns+` FROM timesheets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get timesheet: %w", err)
	}
	return t, nil
}

// List lista timesheets por fecha de trabajo.
func (r *TimesheetRepo) List(ctx context.Context, f repository.TimesheetFilter, limit, offset int) ([]*entity.Timesheet, int, error) {
	w := timesheetWhere(f)
	total, err := w.count(ctx, r.q, "timesheets")
	if err != nil {
		return nil, 0, err
	}
	pageSQL, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx,
		`SELECT `+timesheetColumns+` FROM timesheets`+w.sql()+` ORDER BY work_date, created_at, id`+pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list timesheets: %w", err)
	}
	list, err := scanTimesheets(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Summary agrega horas, monto y cantidad para el filtro.
func (r *TimesheetRepo) Summary(ctx context.Context, f repository.TimesheetFilter) (repository.TimesheetSummary, error) {
	w := timesheetWhere(f)
	var out repository.TimesheetSummary
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(hours_logged), 0), COALESCE(SUM(billable_amount), 0), COUNT(*)
		FROM timesheets`+w.sql(), w.args...,
	).Scan(&out.TotalHours, &out.TotalBillable, &out.EntryCount)
	if err != nil {
		return out, fmt.Errorf("timesheet summary: %w", err)
	}
	return out, nil
}

// Update persiste la timesheet si sigue en expectedStatus y no está facturada.
func (r *TimesheetRepo) Update(ctx context.Context, t *entity.Timesheet, expectedStatus string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE timesheets SET work_date = $3, hours_logged = $4, billing_rate = $5, billable_amount = $6,
		       is_billable = $7, notes = $8, status = $9, submitted_at = $10, approved_by = $11,
		       approved_at = $12, updated_at = $13
		WHERE id = $1 AND status = $2 AND invoice_id IS NULL`,
		t.ID, expectedStatus, t.WorkDate, t.HoursLogged, t.BillingRate, t.BillableAmount, t.IsBillable,
		t.Notes, t.Status, t.SubmittedAt, nullIfEmpty(t.ApprovedBy), t.ApprovedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update timesheet: %w", err)
	}
	return casResult(ctx, r.q, tag, "timesheets", "timesheet", t.ID, expectedStatus)
}

// ListUninvoicedApproved bloquea (FOR UPDATE) las aprobadas sin factura del proyecto.
func (r *TimesheetRepo) ListUninvoicedApproved(ctx context.Context, projectID string) ([]*entity.Timesheet, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+timesheetColumns+` FROM timesheets
		WHERE project_id = $1 AND status = $2 AND invoice_id IS NULL
		ORDER BY work_date, created_at, id
		FOR UPDATE`,
		projectID, entity.TimesheetStatusApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("list uninvoiced timesheets: %w", err)
	}
	return scanTimesheets(rows)
}

// MarkInvoiced enlaza las timesheets a la factura; ninguna puede estar ya facturada.
func (r *TimesheetRepo) MarkInvoiced(ctx context.Context, ids []string, invoiceID string) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE timesheets SET invoice_id = $2, updated_at = now()
		WHERE id = ANY($1::uuid[]) AND invoice_id IS NULL`,
		ids, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("mark timesheets invoiced: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("%w: %d de %d timesheets ya estaban facturadas", domain.ErrInvalidState,
			len(ids)-int(tag.RowsAffected()), len(ids))
	}
	return nil
}
