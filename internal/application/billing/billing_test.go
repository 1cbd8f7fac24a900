package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	appbilling "github.com/jhoicas/agency-billing-api/internal/application/billing"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
	"github.com/jhoicas/agency-billing-api/internal/infrastructure/memory"
	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

const (
	pmID         = "pm-1"
	adminID      = "admin-1"
	consultantID = "consultant-1"
)

var fixedNow = time.Date(2024, 7, 20, 15, 30, 0, 0, time.UTC)

type env struct {
	store      *memory.Store
	recorder   *audit.Recorder
	clients    *appbilling.ClientUseCase
	sows       *workflow.SOWUseCase
	projects   *workflow.ProjectUseCase
	timesheets *workflow.TimesheetUseCase
	generator  *appbilling.InvoiceGenerator
	lifecycle  *appbilling.InvoiceLifecycle
}

func newEnv() *env {
	store := memory.NewStore()
	rec := audit.NewRecorder(store)
	cfg := appbilling.Config{Now: func() time.Time { return fixedNow }}
	return &env{
		store:      store,
		recorder:   rec,
		clients:    appbilling.NewClientUseCase(store, rec),
		sows:       workflow.NewSOWUseCase(store, rec),
		projects:   workflow.NewProjectUseCase(store, rec),
		timesheets: workflow.NewTimesheetUseCase(store, rec),
		generator:  appbilling.NewInvoiceGenerator(store, rec, cfg, logger.Nop()),
		lifecycle:  appbilling.NewInvoiceLifecycle(store, rec, cfg),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// projectFor crea cliente → SOW aprobado → proyecto para junio de 2024.
func (e *env) projectFor(t *testing.T, paymentTerms int) (*dto.ClientResponse, *dto.ProjectResponse) {
	t.Helper()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, adminID, dto.CreateClientRequest{
		Name: "Acme", Email: uuid.NewString() + "@acme.test", PaymentTerms: &paymentTerms,
	})
	require.NoError(t, err)
	s, err := e.sows.Create(ctx, pmID, dto.CreateSOWRequest{
		ClientID: c.ID, Title: "Portal", StartDate: "2024-06-01", EndDate: "2024-06-30",
		Rate: dec("150"), TotalBudget: dec("100000"),
	})
	require.NoError(t, err)
	_, err = e.sows.Submit(ctx, pmID, s.ID)
	require.NoError(t, err)
	_, err = e.sows.Approve(ctx, adminID, s.ID, true, "")
	require.NoError(t, err)
	p, err := e.projects.CreateFromSOW(ctx, pmID, s.ID)
	require.NoError(t, err)
	return c, p
}

func (e *env) approvedTimesheet(t *testing.T, projectID, day, hours, rate string) *dto.TimesheetResponse {
	t.Helper()
	ctx := context.Background()
	ts, err := e.timesheets.Create(ctx, consultantID, dto.CreateTimesheetRequest{
		ProjectID: projectID, WorkDate: day, HoursLogged: dec(hours), BillingRate: dec(rate),
	})
	require.NoError(t, err)
	_, err = e.timesheets.Submit(ctx, consultantID, ts.ID)
	require.NoError(t, err)
	ts, err = e.timesheets.Approve(ctx, pmID, ts.ID)
	require.NoError(t, err)
	return ts
}

// ── Generación ────────────────────────────────────────────────────────────────

// Tres timesheets de 8h a 150 → 3600 + 360 = 3960, tres líneas y timesheets enlazadas.
func TestGenerate_ThreeTimesheets(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, p := e.projectFor(t, 30)
	var ids []string
	for _, day := range []string{"2024-06-03", "2024-06-04", "2024-06-05"} {
		ids = append(ids, e.approvedTimesheet(t, p.ID, day, "8", "150").ID)
	}

	inv, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID, InvoiceDate: "2024-07-01"})
	require.NoError(t, err)

	assert.Equal(t, "3600.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "360.00", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "3960.00", inv.TotalAmount.StringFixed(2))
	assert.True(t, inv.DiscountAmount.IsZero())
	assert.Equal(t, entity.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, c.ID, inv.ClientID, "el cliente se toma del SOW")
	assert.Equal(t, "INV-20240701-0001", inv.InvoiceNumber)
	assert.Equal(t, "2024-07-31", inv.DueDate, "invoice_date + payment_terms")

	require.Len(t, inv.Lines, 3)
	assert.Equal(t, "Consulting services - 2024-06-03", inv.Lines[0].Description)
	assert.Equal(t, "8", inv.Lines[0].Quantity.String())
	assert.Equal(t, "1200.00", inv.Lines[0].LineTotal.StringFixed(2))

	for _, id := range ids {
		ts, err := e.timesheets.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, ts.InvoiceID, "timesheet %s enlazada", id)
	}

	logs, err := e.recorder.Query(ctx, dto.AuditLogListRequest{EntityType: entity.EntityInvoice, EntityID: inv.ID})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1, "una sola entrada de auditoría por factura")
	assert.EqualValues(t, 3, logs.Items[0].NewValues["timesheet_count"])
}

// 7.5h × 123.45 = 925.875 → 925.88; impuesto 92.5875 → 92.59; total 1018.47.
func TestGenerate_HalfUpRounding(t *testing.T) {
	e := newEnv()
	_, p := e.projectFor(t, 30)
	ts := e.approvedTimesheet(t, p.ID, "2024-06-10", "7.5", "123.45")
	assert.Equal(t, "925.88", ts.BillableAmount.StringFixed(2))

	inv, err := e.generator.Generate(context.Background(), pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "925.88", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "92.59", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "1018.47", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, "2024-07-20", inv.InvoiceDate, "sin invoice_date se usa hoy")
}

func TestGenerate_NoApprovedTimesheets(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 30)
	_, err := e.timesheets.Create(ctx, consultantID, dto.CreateTimesheetRequest{
		ProjectID: p.ID, WorkDate: "2024-06-10", HoursLogged: dec("8"), BillingRate: dec("150"),
	})
	require.NoError(t, err)

	_, err = e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	assert.ErrorIs(t, err, domain.ErrValidation, "las timesheets en draft no se facturan")
}

func TestGenerate_ConsumesTimesheetsOnce(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")

	_, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)
	_, err = e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	assert.ErrorIs(t, err, domain.ErrValidation, "la segunda generación no encuentra timesheets libres")

	e.approvedTimesheet(t, p.ID, "2024-06-11", "4", "150")
	second, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, "INV-20240720-0002", second.InvoiceNumber, "la secuencia cuenta las del mismo día")
}

func TestGenerate_UnknownClient(t *testing.T) {
	e := newEnv()
	_, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")

	_, err := e.generator.Generate(context.Background(), pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID, ClientID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ts, err := e.timesheets.List(context.Background(), dto.TimesheetListRequest{
		TimesheetFilterRequest: dto.TimesheetFilterRequest{ProjectID: p.ID},
	})
	require.NoError(t, err)
	require.Len(t, ts.Items, 1)
	assert.Empty(t, ts.Items[0].InvoiceID, "el fallo no deja timesheets enlazadas")
}

func TestGenerate_NoPaymentTermsLeavesDueDateUnset(t *testing.T) {
	e := newEnv()
	_, p := e.projectFor(t, 0)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")

	inv, err := e.generator.Generate(context.Background(), pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, inv.DueDate)
	assert.Zero(t, inv.DaysOverdue)
}

func TestGenerate_TimesheetImmutableAfterInvoice(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 30)
	ts := e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")
	_, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)

	_, err = e.timesheets.Reject(ctx, pmID, ts.ID, "tarde")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ── Validación de totales ─────────────────────────────────────────────────────

func TestValidateTotals_RoundTrip(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "7.5", "123.45")
	e.approvedTimesheet(t, p.ID, "2024-06-11", "3.33", "99.99")

	inv, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)
	assert.NoError(t, e.generator.ValidateTotals(ctx, inv.ID))

	assert.ErrorIs(t, e.generator.ValidateTotals(ctx, "no-existe"), domain.ErrNotFound)
}

func TestValidateTotals_Mismatch(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")
	out, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)

	// altera el total guardado fuera del flujo normal
	err = e.store.RunInTx(ctx, func(repos repository.Repositories) error {
		inv, err := repos.Invoices.GetByID(ctx, out.ID)
		if err != nil {
			return err
		}
		inv.TotalAmount = dec("1.00")
		return repos.Invoices.Update(ctx, inv, inv.Status)
	})
	require.NoError(t, err)

	err = e.generator.ValidateTotals(ctx, out.ID)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "total_amount")
	assert.Contains(t, err.Error(), "1.00")
	assert.Contains(t, err.Error(), "1320.00")
}

// ── Ciclo de vida ─────────────────────────────────────────────────────────────

func TestLifecycle_SendAndPay(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 10)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")
	inv, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID, InvoiceDate: "2024-07-01"})
	require.NoError(t, err)
	assert.Equal(t, 9, inv.DaysOverdue, "vence 2024-07-11, hoy 2024-07-20")

	sent, err := e.lifecycle.Send(ctx, pmID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, sent.Status)

	_, err = e.lifecycle.Send(ctx, pmID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	paid, err := e.lifecycle.MarkPaid(ctx, "accountant-1", inv.ID, dto.MarkPaidRequest{PaymentDate: "2024-07-15"})
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, "2024-07-15", paid.PaymentDate)
	assert.Zero(t, paid.DaysOverdue, "pagada no tiene mora")

	_, err = e.lifecycle.MarkPaid(ctx, "accountant-1", inv.ID, dto.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "ya pagada")

	logs, err := e.recorder.Query(ctx, dto.AuditLogListRequest{EntityID: inv.ID})
	require.NoError(t, err)
	require.Len(t, logs.Items, 3)
	assert.Equal(t, entity.AuditActionPay, logs.Items[0].Action)
	assert.Equal(t, "2024-07-15", logs.Items[0].NewValues["payment_date"])
	assert.Equal(t, entity.AuditActionSend, logs.Items[1].Action)
}

func TestLifecycle_DraftCanBePaid(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")
	inv, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)

	paid, err := e.lifecycle.MarkPaid(ctx, adminID, inv.ID, dto.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-20", paid.PaymentDate, "sin fecha se usa hoy")

	_, err = e.lifecycle.Send(ctx, pmID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "paid es terminal")
}

func TestListAndDetail(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")
	first, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID, InvoiceDate: "2024-07-01"})
	require.NoError(t, err)
	e.approvedTimesheet(t, p.ID, "2024-06-11", "8", "150")
	second, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID, InvoiceDate: "2024-07-05"})
	require.NoError(t, err)

	list, err := e.generator.List(ctx, dto.InvoiceListRequest{ClientID: c.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, second.ID, list.Items[0].ID, "más reciente primero")
	assert.Empty(t, list.Items[0].Lines, "el listado no trae líneas")

	list, err = e.generator.List(ctx, dto.InvoiceListRequest{To: "2024-07-02"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, first.ID, list.Items[0].ID)

	detail, err := e.generator.Detail(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 1)

	_, err = e.generator.Detail(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── PDF ───────────────────────────────────────────────────────────────────────

type fakePDF struct{ got appbilling.InvoiceDocument }

func (f *fakePDF) GenerateInvoicePDF(_ context.Context, doc appbilling.InvoiceDocument) ([]byte, error) {
	f.got = doc
	return []byte("%PDF-fake"), nil
}

func TestDownloadInvoicePDF(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")
	inv, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)

	gen := &fakePDF{}
	uc := appbilling.NewPDFUseCase(e.store, gen)
	b, name, err := uc.DownloadInvoicePDF(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), b)
	assert.Equal(t, "invoice_"+inv.InvoiceNumber+".pdf", name)
	assert.Equal(t, c.ID, gen.got.Client.ID)
	require.NotNil(t, gen.got.Project)
	assert.Len(t, gen.got.Lines, 1)

	_, _, err = uc.DownloadInvoicePDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
