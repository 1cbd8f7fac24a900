package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/billing"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

// LineItemDescriptionPrefix texto de cada línea; le sigue la fecha de la timesheet.
const LineItemDescriptionPrefix = "Consulting services - "

// InvoiceGenerator agrega las timesheets aprobadas y no facturadas de un proyecto en una
// factura draft con una línea por timesheet. También expone las lecturas de facturas.
type InvoiceGenerator struct {
	tx    repository.TxRunner
	audit *audit.Recorder
	cfg   Config
	log   *logger.Logger
}

// NewInvoiceGenerator construye el generador.
func NewInvoiceGenerator(tx repository.TxRunner, recorder *audit.Recorder, cfg Config, log *logger.Logger) *InvoiceGenerator {
	return &InvoiceGenerator{tx: tx, audit: recorder, cfg: cfg.withDefaults(), log: log}
}

// Generate crea la factura, sus líneas y enlaza las timesheets, todo en una transacción.
// ClientID vacío toma el cliente del SOW del proyecto.
func (g *InvoiceGenerator) Generate(ctx context.Context, userID string, in dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ProjectID == "" {
		return nil, fmt.Errorf("%w: project_id es obligatorio", domain.ErrInvalidInput)
	}
	invoiceDate := g.cfg.today()
	if in.InvoiceDate != "" {
		d, err := dto.ParseDate("invoice_date", in.InvoiceDate)
		if err != nil {
			return nil, err
		}
		invoiceDate = d
	}

	var (
		inv   *entity.Invoice
		lines []*entity.LineItem
	)
	err := g.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		timesheets, err := repos.Timesheets.ListUninvoicedApproved(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		if len(timesheets) == 0 {
			return fmt.Errorf("%w: no hay timesheets aprobadas sin facturar para el proyecto %s", domain.ErrValidation, in.ProjectID)
		}
		project, err := repository.FindProject(ctx, repos.Projects, in.ProjectID)
		if err != nil {
			return err
		}
		clientID := in.ClientID
		if clientID == "" {
			sow, err := repository.FindSOW(ctx, repos.SOWs, project.SOWID)
			if err != nil {
				return err
			}
			clientID = sow.ClientID
		}
		client, err := repository.FindClient(ctx, repos.Clients, clientID)
		if err != nil {
			return err
		}

		amounts := make([]decimal.Decimal, len(timesheets))
		for i, ts := range timesheets {
			amounts[i] = ts.BillableAmount
		}
		totals := billing.ComputeTotals(amounts, g.cfg.TaxRate, decimal.Zero)

		seq, err := repos.Invoices.NextSequence(ctx, billing.InvoiceNumberPrefix(g.cfg.InvoicePrefix, invoiceDate))
		if err != nil {
			return err
		}
		now := g.cfg.Now().UTC()
		inv = &entity.Invoice{
			ID:             uuid.New().String(),
			ClientID:       client.ID,
			ProjectID:      project.ID,
			InvoiceNumber:  billing.FormatInvoiceNumber(g.cfg.InvoicePrefix, invoiceDate, seq),
			InvoiceDate:    invoiceDate,
			DueDate:        dueDate(invoiceDate, client.PaymentTerms),
			Subtotal:       billing.Round(totals.Subtotal),
			TaxAmount:      totals.Tax,
			DiscountAmount: totals.Discount,
			TotalAmount:    totals.Total,
			Status:         entity.InvoiceStatusDraft,
			CreatedBy:      userID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Invoices.Create(ctx, inv); err != nil {
			return err
		}

		ids := make([]string, 0, len(timesheets))
		lines = make([]*entity.LineItem, 0, len(timesheets))
		for i, ts := range timesheets {
			item := &entity.LineItem{
				ID:          uuid.New().String(),
				InvoiceID:   inv.ID,
				TimesheetID: ts.ID,
				LineNumber:  i + 1,
				Description: LineItemDescriptionPrefix + dto.FormatDate(ts.WorkDate),
				Quantity:    ts.HoursLogged,
				UnitPrice:   ts.BillingRate,
				LineTotal:   ts.BillableAmount,
			}
			if err := repos.Invoices.CreateLineItem(ctx, item); err != nil {
				return err
			}
			lines = append(lines, item)
			ids = append(ids, ts.ID)
		}
		if err := repos.Timesheets.MarkInvoiced(ctx, ids, inv.ID); err != nil {
			return err
		}

		return g.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:     userID,
			Action:     entity.AuditActionCreate,
			EntityType: entity.EntityInvoice,
			EntityID:   inv.ID,
			NewValues: audit.Values{
				"invoice_number":  inv.InvoiceNumber,
				"client_id":       inv.ClientID,
				"project_id":      inv.ProjectID,
				"subtotal":        inv.Subtotal.String(),
				"tax_amount":      inv.TaxAmount.String(),
				"total_amount":    inv.TotalAmount.String(),
				"timesheet_count": len(timesheets),
			},
			Description: fmt.Sprintf("Generated invoice %s from %d timesheets", inv.InvoiceNumber, len(timesheets)),
		})
	})
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("project_id", inv.ProjectID).
		Int("timesheets", len(lines)).
		Str("total", inv.TotalAmount.StringFixed(billing.MoneyPlaces)).
		Msg("factura generada")

	return g.toResponse(inv, lines), nil
}

func dueDate(invoiceDate time.Time, paymentTerms int) *time.Time {
	if paymentTerms <= 0 {
		return nil
	}
	d := invoiceDate.AddDate(0, 0, paymentTerms)
	return &d
}

// ValidateTotals recalcula subtotal, impuesto y total desde las líneas guardadas y
// devuelve domain.ErrValidation con el campo y ambos valores si alguno difiere.
func (g *InvoiceGenerator) ValidateTotals(ctx context.Context, invoiceID string) error {
	var (
		inv   *entity.Invoice
		lines []*entity.LineItem
	)
	err := g.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if inv, err = repository.FindInvoice(ctx, repos.Invoices, invoiceID); err != nil {
			return err
		}
		lines, err = repos.Invoices.GetLineItems(ctx, invoiceID)
		return err
	})
	if err != nil {
		return err
	}
	amounts := make([]decimal.Decimal, len(lines))
	for i, li := range lines {
		amounts[i] = li.LineTotal
	}
	want := billing.ComputeTotals(amounts, g.cfg.TaxRate, inv.DiscountAmount)
	checks := []struct {
		field       string
		stored, got decimal.Decimal
	}{
		{"subtotal", inv.Subtotal, billing.Round(want.Subtotal)},
		{"tax_amount", inv.TaxAmount, want.Tax},
		{"total_amount", inv.TotalAmount, want.Total},
	}
	for _, c := range checks {
		if !c.stored.Equal(c.got) {
			return fmt.Errorf("%w: %s de la factura %s no coincide: guardado %s, calculado %s",
				domain.ErrValidation, c.field, inv.InvoiceNumber,
				c.stored.StringFixed(billing.MoneyPlaces), c.got.StringFixed(billing.MoneyPlaces))
		}
	}
	return nil
}

// Detail factura con sus líneas.
func (g *InvoiceGenerator) Detail(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	var (
		inv   *entity.Invoice
		lines []*entity.LineItem
	)
	err := g.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if inv, err = repository.FindInvoice(ctx, repos.Invoices, invoiceID); err != nil {
			return err
		}
		lines, err = repos.Invoices.GetLineItems(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g.toResponse(inv, lines), nil
}

// List facturas filtradas, invoice_date más reciente primero. Sin líneas.
func (g *InvoiceGenerator) List(ctx context.Context, in dto.InvoiceListRequest) (*dto.ListResponse[dto.InvoiceResponse], error) {
	in.DefaultPage()
	from, err := dto.ParseOptionalDate("from", in.From)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseOptionalDate("to", in.To)
	if err != nil {
		return nil, err
	}
	filter := repository.InvoiceFilter{
		ClientID:  in.ClientID,
		ProjectID: in.ProjectID,
		Status:    in.Status,
		From:      from,
		To:        to,
	}
	var (
		list  []*entity.Invoice
		total int
	)
	err = g.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Invoices.List(ctx, filter, in.Limit, in.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.InvoiceResponse]{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, inv := range list {
		out.Items = append(out.Items, *g.toResponse(inv, nil))
	}
	return out, nil
}

// DaysOverdue días de mora de la factura a la fecha actual de la configuración.
func (g *InvoiceGenerator) DaysOverdue(inv *entity.Invoice) int {
	return billing.DaysOverdue(inv.DueDate, inv.PaymentDate, g.cfg.today())
}

func (g *InvoiceGenerator) toResponse(inv *entity.Invoice, lines []*entity.LineItem) *dto.InvoiceResponse {
	return toInvoiceResponse(inv, lines, g.DaysOverdue(inv))
}

func toInvoiceResponse(inv *entity.Invoice, lines []*entity.LineItem, daysOverdue int) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:             inv.ID,
		ClientID:       inv.ClientID,
		ProjectID:      inv.ProjectID,
		InvoiceNumber:  inv.InvoiceNumber,
		InvoiceDate:    dto.FormatDate(inv.InvoiceDate),
		DueDate:        dto.FormatOptionalDate(inv.DueDate),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		TotalAmount:    inv.TotalAmount,
		Status:         inv.Status,
		PaymentDate:    dto.FormatOptionalDate(inv.PaymentDate),
		DaysOverdue:    daysOverdue,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	for _, li := range lines {
		out.Lines = append(out.Lines, dto.LineItemResponse{
			ID:          li.ID,
			TimesheetID: li.TimesheetID,
			LineNumber:  li.LineNumber,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			LineTotal:   li.LineTotal,
		})
	}
	return out
}
