package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ── SOW ───────────────────────────────────────────────────────────────────────

func TestSOW_ValidateTerms(t *testing.T) {
	ok := entity.SOW{StartDate: date("2024-01-01"), EndDate: date("2024-12-31"), Rate: decimal.NewFromInt(150), TotalBudget: decimal.NewFromInt(100000)}
	require.NoError(t, ok.ValidateTerms())

	sameDay := ok
	sameDay.EndDate = sameDay.StartDate
	assert.ErrorIs(t, sameDay.ValidateTerms(), domain.ErrOutOfRange, "end_date igual a start_date")

	noRate := ok
	noRate.Rate = decimal.Zero
	assert.ErrorIs(t, noRate.ValidateTerms(), domain.ErrOutOfRange)

	noBudget := ok
	noBudget.TotalBudget = decimal.NewFromInt(-1)
	assert.ErrorIs(t, noBudget.ValidateTerms(), domain.ErrOutOfRange)
}

func TestSOW_Transitions(t *testing.T) {
	s := &entity.SOW{ID: "s1", Status: entity.SOWStatusDraft}
	require.NoError(t, s.Submit(now))
	assert.Equal(t, entity.SOWStatusPending, s.Status)

	require.NoError(t, s.Decide(true, "pm-1", now))
	assert.Equal(t, entity.SOWStatusApproved, s.Status)
	assert.Equal(t, "pm-1", s.ApprovedBy)
	require.NotNil(t, s.ApprovedAt)

	rejected := &entity.SOW{ID: "s2", Status: entity.SOWStatusPending}
	require.NoError(t, rejected.Decide(false, "pm-1", now))
	assert.Equal(t, entity.SOWStatusRejected, rejected.Status)
	assert.NotNil(t, rejected.ApprovedAt, "el rechazo también sella fecha")
}

func TestSOW_IllegalTransitions(t *testing.T) {
	all := []string{entity.SOWStatusDraft, entity.SOWStatusPending, entity.SOWStatusApproved, entity.SOWStatusRejected}
	for _, status := range all {
		s := &entity.SOW{ID: "s", Status: status}
		if status != entity.SOWStatusDraft {
			assert.ErrorIs(t, s.Submit(now), domain.ErrInvalidState, "submit desde %s", status)
			assert.ErrorIs(t, s.EnsureEditable(), domain.ErrInvalidState, "editar en %s", status)
		}
		if status != entity.SOWStatusPending {
			assert.ErrorIs(t, s.Decide(true, "u", now), domain.ErrInvalidState, "approve desde %s", status)
			assert.ErrorIs(t, s.Decide(false, "u", now), domain.ErrInvalidState, "reject desde %s", status)
		}
		assert.Equal(t, status, s.Status, "un error no cambia el estado")
	}
}

// ── Project ───────────────────────────────────────────────────────────────────

func TestNewProjectFromSOW(t *testing.T) {
	sow := &entity.SOW{
		ID: "s1", Title: "Portal", Description: "desc", Status: entity.SOWStatusApproved,
		StartDate: date("2024-01-01"), EndDate: date("2024-12-31"), TotalBudget: decimal.NewFromInt(100000),
	}
	p, err := entity.NewProjectFromSOW(sow, "p1", "u1", now)
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectStatusInProgress, p.Status)
	assert.Equal(t, "Portal", p.Name)
	assert.True(t, p.Budget.Equal(decimal.NewFromInt(100000)))

	sow.Title = "Otro"
	assert.Equal(t, "Portal", p.Name, "el proyecto es una copia, no una referencia")

	for _, status := range []string{entity.SOWStatusDraft, entity.SOWStatusPending, entity.SOWStatusRejected} {
		_, err := entity.NewProjectFromSOW(&entity.SOW{ID: "x", Status: status}, "p", "u", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "SOW en %s", status)
	}
}

func TestProject_CloseAndCovers(t *testing.T) {
	p := &entity.Project{ID: "p1", Status: entity.ProjectStatusInProgress, StartDate: date("2024-06-01"), EndDate: date("2024-06-30")}
	assert.True(t, p.Covers(date("2024-06-01")))
	assert.True(t, p.Covers(date("2024-06-30").Add(23*time.Hour)), "la fecha final es inclusiva")
	assert.False(t, p.Covers(date("2024-07-15")))
	assert.False(t, p.Covers(date("2024-05-31")))

	require.NoError(t, p.Close(now))
	assert.ErrorIs(t, p.Close(now), domain.ErrInvalidState)
	assert.ErrorIs(t, p.EnsureOpen(), domain.ErrInvalidState)
}

// ── Timesheet ─────────────────────────────────────────────────────────────────

func TestTimesheet_Recalculate(t *testing.T) {
	ts := &entity.Timesheet{HoursLogged: decimal.RequireFromString("7.5"), BillingRate: decimal.RequireFromString("123.45"), IsBillable: true}
	ts.Recalculate()
	assert.Equal(t, "925.88", ts.BillableAmount.StringFixed(2))

	ts.IsBillable = false
	ts.Recalculate()
	assert.True(t, ts.BillableAmount.IsZero(), "no facturable = 0")
}

func TestValidateHours(t *testing.T) {
	for _, h := range []string{"0.25", "8", "24"} {
		assert.NoError(t, entity.ValidateHours(decimal.RequireFromString(h)), h)
	}
	for _, h := range []string{"0", "-1", "24.01"} {
		assert.ErrorIs(t, entity.ValidateHours(decimal.RequireFromString(h)), domain.ErrOutOfRange, h)
	}
	assert.ErrorIs(t, entity.ValidateRate(decimal.Zero), domain.ErrOutOfRange)
}

func TestTimesheet_IllegalTransitions(t *testing.T) {
	all := []string{entity.TimesheetStatusDraft, entity.TimesheetStatusSubmitted, entity.TimesheetStatusApproved, entity.TimesheetStatusRejected}
	for _, status := range all {
		ts := &entity.Timesheet{ID: "t", Status: status}
		if status != entity.TimesheetStatusDraft {
			assert.ErrorIs(t, ts.Submit(now), domain.ErrInvalidState, "submit desde %s", status)
			assert.ErrorIs(t, ts.EnsureEditable(), domain.ErrInvalidState, "editar en %s", status)
		}
		if status != entity.TimesheetStatusSubmitted {
			assert.ErrorIs(t, ts.Approve("u", now), domain.ErrInvalidState, "approve desde %s", status)
			assert.ErrorIs(t, ts.Reject("r", now), domain.ErrInvalidState, "reject desde %s", status)
		}
		assert.Equal(t, status, ts.Status)
	}
}

func TestTimesheet_RejectStoresReason(t *testing.T) {
	ts := &entity.Timesheet{ID: "t", Status: entity.TimesheetStatusSubmitted, Notes: "original"}
	require.NoError(t, ts.Reject("horas duplicadas", now))
	assert.Equal(t, "[REJECTED] horas duplicadas", ts.Notes)

	noReason := &entity.Timesheet{ID: "t2", Status: entity.TimesheetStatusSubmitted, Notes: "original"}
	require.NoError(t, noReason.Reject("", now))
	assert.Equal(t, "original", noReason.Notes)
}

func TestTimesheet_InvoicedIsImmutable(t *testing.T) {
	ts := &entity.Timesheet{ID: "t", Status: entity.TimesheetStatusDraft, InvoiceID: "inv-1"}
	assert.ErrorIs(t, ts.EnsureEditable(), domain.ErrInvalidState)
	assert.ErrorIs(t, ts.Submit(now), domain.ErrInvalidState)
}

// ── Invoice ───────────────────────────────────────────────────────────────────

func TestInvoice_Transitions(t *testing.T) {
	inv := &entity.Invoice{ID: "i1", Status: entity.InvoiceStatusDraft}
	require.NoError(t, inv.Send(now))
	assert.ErrorIs(t, inv.Send(now), domain.ErrInvalidState, "send desde sent")
	require.NoError(t, inv.MarkPaid(date("2024-06-15"), now))
	require.NotNil(t, inv.PaymentDate)
	assert.Equal(t, "2024-06-15", inv.PaymentDate.Format(time.DateOnly))
	assert.ErrorIs(t, inv.MarkPaid(now, now), domain.ErrInvalidState, "ya pagada")
	assert.ErrorIs(t, inv.Send(now), domain.ErrInvalidState, "send desde paid")

	draft := &entity.Invoice{ID: "i2", Status: entity.InvoiceStatusDraft}
	require.NoError(t, draft.MarkPaid(now, now), "draft → paid está permitido")
	assert.Equal(t, entity.InvoiceStatusPaid, draft.Status)
}

func TestValidRole(t *testing.T) {
	assert.True(t, entity.ValidRole(entity.RoleAccountant))
	assert.False(t, entity.ValidRole("bodeguero"))
}
