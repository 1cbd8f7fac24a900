package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSOWRequest body para POST /api/v1/sows. Fechas en formato YYYY-MM-DD.
type CreateSOWRequest struct {
	ClientID    string          `json:"client_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Rate        decimal.Decimal `json:"rate"`
	TotalBudget decimal.Decimal `json:"total_budget"`
}

// UpdateSOWRequest body para PUT /api/v1/sows/:id. Solo cambian los campos enviados.
type UpdateSOWRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	StartDate   *string          `json:"start_date,omitempty"`
	EndDate     *string          `json:"end_date,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	TotalBudget *decimal.Decimal `json:"total_budget,omitempty"`
}

// ApproveSOWRequest body para POST /api/v1/sows/:id/approve.
type ApproveSOWRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes,omitempty"`
}

// SOWListRequest filtros de GET /api/v1/sows.
type SOWListRequest struct {
	PageRequest
	Status   string `query:"status"`
	ClientID string `query:"client_id"`
}

// SOWResponse SOW en respuestas.
type SOWResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Rate        decimal.Decimal `json:"rate"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	Status      string          `json:"status"`
	CreatedBy   string          `json:"created_by"`
	ApprovedBy  string          `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
