package dto

import "time"

// CreateClientRequest body para POST /api/v1/clients.
type CreateClientRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
	PaymentTerms   *int   `json:"payment_terms,omitempty"` // días; nil = 30
}

// UpdateClientRequest body para PUT /api/v1/clients/:id. Solo cambian los campos enviados.
type UpdateClientRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Company        *string `json:"company,omitempty"`
	BillingAddress *string `json:"billing_address,omitempty"`
	PaymentTerms   *int    `json:"payment_terms,omitempty"`
}

// ClientListRequest filtros de GET /api/v1/clients.
type ClientListRequest struct {
	PageRequest
	IsActive *bool `query:"is_active"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Company        string    `json:"company,omitempty"`
	BillingAddress string    `json:"billing_address,omitempty"`
	PaymentTerms   int       `json:"payment_terms"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
