package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProjectRequest body para POST /api/v1/projects.
type CreateProjectRequest struct {
	SOWID string `json:"sow_id"`
}

// UpdateProjectRequest body para PUT /api/v1/projects/:id.
type UpdateProjectRequest struct {
	Description string `json:"description"`
}

// CloseProjectRequest body opcional para POST /api/v1/projects/:id/close.
type CloseProjectRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ProjectListRequest filtros de GET /api/v1/projects.
type ProjectListRequest struct {
	PageRequest
	Status string `query:"status"`
}

// ProjectResponse proyecto en respuestas.
type ProjectResponse struct {
	ID          string          `json:"id"`
	SOWID       string          `json:"sow_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Budget      decimal.Decimal `json:"budget"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProjectSummaryResponse GET /api/v1/projects/:id/summary.
// HoursPercentage solo se calcula si se envía allocated_hours.
type ProjectSummaryResponse struct {
	ProjectID        string          `json:"project_id"`
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	Budget           decimal.Decimal `json:"budget"`
	TotalHours       decimal.Decimal `json:"total_hours"`
	BillableAmount   decimal.Decimal `json:"billable_amount"`
	BudgetPercentage decimal.Decimal `json:"budget_percentage"`
	AllocatedHours   decimal.Decimal `json:"allocated_hours"`
	HoursPercentage  decimal.Decimal `json:"hours_percentage"`
}
