package entity

import "time"

// DefaultPaymentTerms días de plazo de pago si el cliente no define otro.
const DefaultPaymentTerms = 30

// Client cliente de la agencia. IsActive=false es la baja lógica: sigue siendo
// referencia válida para SOWs y facturas históricas.
type Client struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Company        string
	BillingAddress string
	PaymentTerms   int // días entre fecha de factura y vencimiento
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
