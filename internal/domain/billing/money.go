// Package billing agrupa las reglas puras de cálculo monetario de la facturación:
// redondeo a 2 decimales, monto facturable, impuesto plano, totales de factura,
// numeración y días de mora. No depende de persistencia.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces número de decimales de todos los montos persistidos.
const MoneyPlaces = 2

// DefaultTaxRate tasa plana de impuesto (10%).
var DefaultTaxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

// Round redondea a 2 decimales mitad-arriba (half away from zero; los montos son no negativos).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// BillableAmount horas × tarifa redondeado, o 0 si la entrada no es facturable.
func BillableAmount(hours, rate decimal.Decimal, billable bool) decimal.Decimal {
	if !billable {
		return decimal.Zero
	}
	return Round(hours.Mul(rate))
}

// LineTotal cantidad × precio unitario redondeado.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(quantity.Mul(unitPrice))
}

// Totals subtotal, impuesto, descuento y total de una factura.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals suma los montos sin redondeo intermedio y aplica la tasa:
// tax = round(subtotal × rate), total = round(subtotal + tax − discount).
func ComputeTotals(amounts []decimal.Decimal, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, a := range amounts {
		subtotal = subtotal.Add(a)
	}
	tax := Round(subtotal.Mul(taxRate))
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    Round(subtotal.Add(tax).Sub(discount)),
	}
}

// Percentage part/whole × 100 redondeado a 2 decimales; 0 si whole no es positivo.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return Round(part.Div(whole).Mul(hundred))
}

// InvoiceNumberPrefix devuelve "INV-YYYYMMDD-" para la fecha dada.
func InvoiceNumberPrefix(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s-", prefix, date.Format("20060102"))
}

// FormatInvoiceNumber arma el número completo con la secuencia en 4 dígitos.
func FormatInvoiceNumber(prefix string, date time.Time, sequence int) string {
	return fmt.Sprintf("%s%04d", InvoiceNumberPrefix(prefix, date), sequence)
}

// DaysOverdue días transcurridos desde el vencimiento. 0 si ya está pagada,
// si no tiene vencimiento o si aún no vence.
func DaysOverdue(dueDate, paymentDate *time.Time, today time.Time) int {
	if paymentDate != nil || dueDate == nil {
		return 0
	}
	d := dateUTC(today).Sub(dateUTC(*dueDate))
	days := int(d.Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dateUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
