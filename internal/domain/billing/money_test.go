package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/agency-billing-api/internal/domain/billing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// 7.5 h × 123.45 = 925.875 → 925.88; impuesto 92.588 → 92.59; total 1018.47.
func TestBillableAmount_RoundsHalfUp(t *testing.T) {
	amount := billing.BillableAmount(dec("7.5"), dec("123.45"), true)
	assert.Equal(t, "925.88", amount.StringFixed(2))

	totals := billing.ComputeTotals([]decimal.Decimal{amount}, billing.DefaultTaxRate, decimal.Zero)
	assert.Equal(t, "925.88", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "92.59", totals.Tax.StringFixed(2))
	assert.Equal(t, "1018.47", totals.Total.StringFixed(2))
}

func TestBillableAmount_NonBillableIsZero(t *testing.T) {
	assert.True(t, billing.BillableAmount(dec("8"), dec("150"), false).IsZero())
}

func TestComputeTotals_ThreeEntries(t *testing.T) {
	a := billing.BillableAmount(dec("8"), dec("150"), true)
	totals := billing.ComputeTotals([]decimal.Decimal{a, a, a}, billing.DefaultTaxRate, decimal.Zero)
	assert.Equal(t, "3600.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "360.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "3960.00", totals.Total.StringFixed(2))
}

func TestComputeTotals_WithDiscount(t *testing.T) {
	totals := billing.ComputeTotals([]decimal.Decimal{dec("100.00")}, billing.DefaultTaxRate, dec("5.555"))
	// 100 + 10 − 5.555 = 104.445 → 104.45
	assert.Equal(t, "104.45", totals.Total.StringFixed(2))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "3.60", billing.Percentage(dec("3600"), dec("100000")).StringFixed(2))
	assert.True(t, billing.Percentage(dec("10"), decimal.Zero).IsZero())
}

func TestFormatInvoiceNumber(t *testing.T) {
	d := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-20240305-", billing.InvoiceNumberPrefix("INV", d))
	assert.Equal(t, "INV-20240305-0007", billing.FormatInvoiceNumber("INV", d, 7))
}

func TestDaysOverdue(t *testing.T) {
	today := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)
	due := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	paid := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, billing.DaysOverdue(&due, nil, today))
	assert.Equal(t, 0, billing.DaysOverdue(&future, nil, today), "aún no vence")
	assert.Equal(t, 0, billing.DaysOverdue(&due, &paid, today), "ya pagada")
	assert.Equal(t, 0, billing.DaysOverdue(nil, nil, today), "sin vencimiento")
}
