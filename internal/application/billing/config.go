// Package billing agrupa el registro de clientes, la generación de facturas a partir
// de timesheets aprobadas y el ciclo de vida de la factura.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain/billing"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// Config parámetros de facturación inyectados en los casos de uso.
type Config struct {
	TaxRate       decimal.Decimal  // tasa plana; cero usa billing.DefaultTaxRate
	InvoicePrefix string           // "INV" por defecto
	Location      *time.Location   // zona horaria para "hoy"; nil = UTC
	Now           func() time.Time // reloj; nil = time.Now
}

// DefaultConfig tasa 10%, prefijo INV, UTC.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.TaxRate.IsZero() {
		c.TaxRate = billing.DefaultTaxRate
	}
	if c.InvoicePrefix == "" {
		c.InvoicePrefix = "INV"
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// today fecha calendario actual en la zona configurada.
func (c Config) today() time.Time {
	return entity.DateOnly(c.Now().In(c.Location))
}
