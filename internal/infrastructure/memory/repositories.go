package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

var (
	_ repository.ClientRepository    = (*ClientRepo)(nil)
	_ repository.SOWRepository       = (*SOWRepo)(nil)
	_ repository.ProjectRepository   = (*ProjectRepo)(nil)
	_ repository.TimesheetRepository = (*TimesheetRepo)(nil)
	_ repository.InvoiceRepository   = (*InvoiceRepo)(nil)
	_ repository.AuditLogRepository  = (*AuditLogRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
)

func stale(kind, id, expected string) error {
	return fmt.Errorf("%w: %s %s ya no está en estado %q", domain.ErrInvalidState, kind, id, expected)
}

// ── Clients ──────────────────────────────────────────────────────────────────

// ClientRepo implementación en memoria de ClientRepository.
type ClientRepo struct{ a access }

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	return r.a.update(func(st *state) error {
		for _, existing := range st.clients {
			if strings.EqualFold(existing.Email, c.Email) {
				return fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, c.Email)
			}
		}
		st.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (out *entity.Client, err error) {
	err = r.a.view(func(st *state) error {
		if c, ok := st.clients[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) GetByEmail(_ context.Context, email string) (out *entity.Client, err error) {
	err = r.a.view(func(st *state) error {
		for _, c := range st.clients {
			if strings.EqualFold(c.Email, email) {
				out = ptr(c)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) List(_ context.Context, f repository.ClientFilter, limit, offset int) (out []*entity.Client, total int, err error) {
	err = r.a.view(func(st *state) error {
		var all []*entity.Client
		for _, c := range st.clients {
			if f.IsActive != nil && c.IsActive != *f.IsActive {
				continue
			}
			all = append(all, ptr(c))
		}
		slices.SortFunc(all, func(x, y *entity.Client) int {
			return cmpOr(cmp.Compare(x.Name, y.Name), cmp.Compare(x.ID, y.ID))
		})
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	return r.a.update(func(st *state) error {
		if _, ok := st.clients[c.ID]; !ok {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, c.ID)
		}
		for id, existing := range st.clients {
			if id != c.ID && strings.EqualFold(existing.Email, c.Email) {
				return fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, c.Email)
			}
		}
		st.clients[c.ID] = *c
		return nil
	})
}

// ── SOWs ─────────────────────────────────────────────────────────────────────

// SOWRepo implementación en memoria de SOWRepository.
type SOWRepo struct{ a access }

func (r *SOWRepo) Create(_ context.Context, s *entity.SOW) error {
	return r.a.update(func(st *state) error {
		st.sows[s.ID] = *s
		return nil
	})
}

func (r *SOWRepo) GetByID(_ context.Context, id string) (out *entity.SOW, err error) {
	err = r.a.view(func(st *state) error {
		if s, ok := st.sows[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SOWRepo) List(_ context.Context, f repository.SOWFilter, limit, offset int) (out []*entity.SOW, total int, err error) {
	err = r.a.view(func(st *state) error {
		var all []*entity.SOW
		for _, s := range st.sows {
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			if f.ClientID != "" && s.ClientID != f.ClientID {
				continue
			}
			all = append(all, ptr(s))
		}
		slices.SortFunc(all, func(x, y *entity.SOW) int {
			return cmpOr(y.CreatedAt.Compare(x.CreatedAt), cmp.Compare(x.ID, y.ID))
		})
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *SOWRepo) Update(_ context.Context, s *entity.SOW, expectedStatus string) error {
	return r.a.update(func(st *state) error {
		cur, ok := st.sows[s.ID]
		if !ok {
			return fmt.Errorf("%w: SOW %s", domain.ErrNotFound, s.ID)
		}
		if cur.Status != expectedStatus {
			return stale("SOW", s.ID, expectedStatus)
		}
		st.sows[s.ID] = *s
		return nil
	})
}

// ── Projects ─────────────────────────────────────────────────────────────────

// ProjectRepo implementación en memoria de ProjectRepository.
type ProjectRepo struct{ a access }

func (r *ProjectRepo) Create(_ context.Context, p *entity.Project) error {
	return r.a.update(func(st *state) error {
		for _, existing := range st.projects {
			if existing.SOWID == p.SOWID {
				return fmt.Errorf("%w: ya existe un proyecto para el SOW %s", domain.ErrAlreadyExists, p.SOWID)
			}
		}
		st.projects[p.ID] = *p
		return nil
	})
}

func (r *ProjectRepo) GetByID(_ context.Context, id string) (out *entity.Project, err error) {
	err = r.a.view(func(st *state) error {
		if p, ok := st.projects[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProjectRepo) GetBySOWID(_ context.Context, sowID string) (out *entity.Project, err error) {
	err = r.a.view(func(st *state) error {
		for _, p := range st.projects {
			if p.SOWID == sowID {
				out = ptr(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProjectRepo) List(_ context.Context, f repository.ProjectFilter, limit, offset int) (out []*entity.Project, total int, err error) {
	err = r.a.view(func(st *state) error {
		var all []*entity.Project
		for _, p := range st.projects {
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			all = append(all, ptr(p))
		}
		slices.SortFunc(all, func(x, y *entity.Project) int {
			return cmpOr(y.CreatedAt.Compare(x.CreatedAt), cmp.Compare(x.ID, y.ID))
		})
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *ProjectRepo) Update(_ context.Context, p *entity.Project, expectedStatus string) error {
	return r.a.update(func(st *state) error {
		cur, ok := st.projects[p.ID]
		if !ok {
			return fmt.Errorf("%w: proyecto %s", domain.ErrNotFound, p.ID)
		}
		if cur.Status != expectedStatus {
			return stale("proyecto", p.ID, expectedStatus)
		}
		st.projects[p.ID] = *p
		return nil
	})
}

func (r *ProjectRepo) Totals(_ context.Context, projectID string) (out repository.ProjectTotals, err error) {
	out.TotalHours, out.ApprovedBillable = decimal.Zero, decimal.Zero
	err = r.a.view(func(st *state) error {
		for _, t := range st.timesheets {
			if t.ProjectID != projectID {
				continue
			}
			out.TotalHours = out.TotalHours.Add(t.HoursLogged)
			if t.Status == entity.TimesheetStatusApproved {
				out.ApprovedBillable = out.ApprovedBillable.Add(t.BillableAmount)
			}
		}
		return nil
	})
	return out, err
}

// ── Timesheets ───────────────────────────────────────────────────────────────

// TimesheetRepo implementación en memoria de TimesheetRepository.
type TimesheetRepo struct{ a access }

func (r *TimesheetRepo) Create(_ context.Context, t *entity.Timesheet) error {
	return r.a.update(func(st *state) error {
		st.timesheets[t.ID] = *t
		return nil
	})
}

func (r *TimesheetRepo) GetByID(_ context.Context, id string) (out *entity.Timesheet, err error) {
	err = r.a.view(func(st *state) error {
		if t, ok := st.timesheets[id]; ok {
			out = &t
		}
		return nil
	})
	return out, err
}

func matchTimesheet(t entity.Timesheet, f repository.TimesheetFilter) bool {
	switch {
	case f.ProjectID != "" && t.ProjectID != f.ProjectID:
		return false
	case f.ConsultantID != "" && t.ConsultantID != f.ConsultantID:
		return false
	case f.Status != "" && t.Status != f.Status:
		return false
	case f.From != nil && t.WorkDate.Before(entity.DateOnly(*f.From)):
		return false
	case f.To != nil && t.WorkDate.After(entity.DateOnly(*f.To)):
		return false
	}
	return true
}

func sortTimesheets(all []*entity.Timesheet) {
	slices.SortFunc(all, func(x, y *entity.Timesheet) int {
		return cmpOr(x.WorkDate.Compare(y.WorkDate), x.CreatedAt.Compare(y.CreatedAt), cmp.Compare(x.ID, y.ID))
	})
}

func (r *TimesheetRepo) List(_ context.Context, f repository.TimesheetFilter, limit, offset int) (out []*entity.Timesheet, total int, err error) {
	err = r.a.view(func(st *state) error {
		var all []*entity.Timesheet
		for _, t := range st.timesheets {
			if matchTimesheet(t, f) {
				all = append(all, ptr(t))
			}
		}
		sortTimesheets(all)
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *TimesheetRepo) Summary(_ context.Context, f repository.TimesheetFilter) (out repository.TimesheetSummary, err error) {
	out.TotalHours, out.TotalBillable = decimal.Zero, decimal.Zero
	err = r.a.view(func(st *state) error {
		for _, t := range st.timesheets {
			if !matchTimesheet(t, f) {
				continue
			}
			out.TotalHours = out.TotalHours.Add(t.HoursLogged)
			out.TotalBillable = out.TotalBillable.Add(t.BillableAmount)
			out.EntryCount++
		}
		return nil
	})
	return out, err
}

func (r *TimesheetRepo) Update(_ context.Context, t *entity.Timesheet, expectedStatus string) error {
	return r.a.update(func(st *state) error {
		cur, ok := st.timesheets[t.ID]
		if !ok {
			return fmt.Errorf("%w: timesheet %s", domain.ErrNotFound, t.ID)
		}
		if cur.Status != expectedStatus || cur.InvoiceID != "" {
			return stale("timesheet", t.ID, expectedStatus)
		}
		st.timesheets[t.ID] = *t
		return nil
	})
}

func (r *TimesheetRepo) ListUninvoicedApproved(_ context.Context, projectID string) (out []*entity.Timesheet, err error) {
	err = r.a.view(func(st *state) error {
		for _, t := range st.timesheets {
			if t.ProjectID == projectID && t.Status == entity.TimesheetStatusApproved && t.InvoiceID == "" {
				out = append(out, ptr(t))
			}
		}
		sortTimesheets(out)
		return nil
	})
	return out, err
}

func (r *TimesheetRepo) MarkInvoiced(_ context.Context, ids []string, invoiceID string) error {
	return r.a.update(func(st *state) error {
		for _, id := range ids {
			t, ok := st.timesheets[id]
			if !ok {
				return fmt.Errorf("%w: timesheet %s", domain.ErrNotFound, id)
			}
			if t.InvoiceID != "" {
				return fmt.Errorf("%w: timesheet %s ya fue facturada", domain.ErrInvalidState, id)
			}
			t.InvoiceID = invoiceID
			st.timesheets[id] = t
		}
		return nil
	})
}

// ── Invoices ─────────────────────────────────────────────────────────────────

// InvoiceRepo implementación en memoria de InvoiceRepository.
// La numeración queda serializada porque las transacciones del Store lo están.
type InvoiceRepo struct{ a access }

func (r *InvoiceRepo) NextSequence(_ context.Context, numberPrefix string) (seq int, err error) {
	err = r.a.view(func(st *state) error {
		for _, inv := range st.invoices {
			if strings.HasPrefix(inv.InvoiceNumber, numberPrefix) {
				seq++
			}
		}
		return nil
	})
	return seq + 1, err
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.a.update(func(st *state) error {
		for _, existing := range st.invoices {
			if existing.InvoiceNumber == inv.InvoiceNumber {
				return fmt.Errorf("%w: número de factura %s", domain.ErrAlreadyExists, inv.InvoiceNumber)
			}
		}
		st.invoices[inv.ID] = *inv
		return nil
	})
}

func (r *InvoiceRepo) CreateLineItem(_ context.Context, item *entity.LineItem) error {
	return r.a.update(func(st *state) error {
		if _, ok := st.invoices[item.InvoiceID]; !ok {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, item.InvoiceID)
		}
		st.lineItems[item.ID] = *item
		return nil
	})
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (out *entity.Invoice, err error) {
	err = r.a.view(func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			out = &inv
		}
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) GetLineItems(_ context.Context, invoiceID string) (out []*entity.LineItem, err error) {
	err = r.a.view(func(st *state) error {
		for _, li := range st.lineItems {
			if li.InvoiceID == invoiceID {
				out = append(out, ptr(li))
			}
		}
		slices.SortFunc(out, func(x, y *entity.LineItem) int { return cmp.Compare(x.LineNumber, y.LineNumber) })
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter, limit, offset int) (out []*entity.Invoice, total int, err error) {
	err = r.a.view(func(st *state) error {
		var all []*entity.Invoice
		for _, inv := range st.invoices {
			switch {
			case f.ClientID != "" && inv.ClientID != f.ClientID:
				continue
			case f.ProjectID != "" && inv.ProjectID != f.ProjectID:
				continue
			case f.Status != "" && inv.Status != f.Status:
				continue
			case f.From != nil && inv.InvoiceDate.Before(entity.DateOnly(*f.From)):
				continue
			case f.To != nil && inv.InvoiceDate.After(entity.DateOnly(*f.To)):
				continue
			}
			all = append(all, ptr(inv))
		}
		slices.SortFunc(all, func(x, y *entity.Invoice) int {
			return cmpOr(y.InvoiceDate.Compare(x.InvoiceDate), cmp.Compare(y.InvoiceNumber, x.InvoiceNumber))
		})
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice, expectedStatus string) error {
	return r.a.update(func(st *state) error {
		cur, ok := st.invoices[inv.ID]
		if !ok {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, inv.ID)
		}
		if cur.Status != expectedStatus {
			return stale("factura", inv.ID, expectedStatus)
		}
		st.invoices[inv.ID] = *inv
		return nil
	})
}

// ── Audit ────────────────────────────────────────────────────────────────────

// AuditLogRepo implementación en memoria, solo inserción.
type AuditLogRepo struct{ a access }

func (r *AuditLogRepo) Create(_ context.Context, e *entity.AuditLogEntry) error {
	return r.a.update(func(st *state) error {
		st.auditLogs = append(st.auditLogs, *e)
		return nil
	})
}

func (r *AuditLogRepo) List(_ context.Context, f repository.AuditLogFilter, limit, offset int) (out []*entity.AuditLogEntry, total int, err error) {
	err = r.a.view(func(st *state) error {
		var all []*entity.AuditLogEntry
		// recorrido inverso: a igual created_at, la última insertada va primero
		for i := len(st.auditLogs) - 1; i >= 0; i-- {
			e := st.auditLogs[i]
			switch {
			case f.EntityType != "" && e.EntityType != f.EntityType:
				continue
			case f.EntityID != "" && e.EntityID != f.EntityID:
				continue
			case f.UserID != "" && e.UserID != f.UserID:
				continue
			case f.Action != "" && e.Action != f.Action:
				continue
			}
			all = append(all, ptr(e))
		}
		slices.SortStableFunc(all, func(x, y *entity.AuditLogEntry) int {
			return y.CreatedAt.Compare(x.CreatedAt)
		})
		total = len(all)
		out = page(all, limit, offset)
		return nil
	})
	return out, total, err
}

// ── Users ────────────────────────────────────────────────────────────────────

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct{ a access }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.a.update(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, u.Email)
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (out *entity.User, err error) {
	err = r.a.view(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (out *entity.User, err error) {
	err = r.a.view(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = ptr(u)
				return nil
			}
		}
		return nil
	})
	return out, err
}
