package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del proyecto. No existe reapertura.
const (
	ProjectStatusInProgress = "in_progress"
	ProjectStatusClosed     = "closed"
)

// Project se deriva 1:1 de un SOW aprobado. Nombre, fechas y presupuesto son
// una copia tomada al crearlo; cambios posteriores del SOW no se propagan.
type Project struct {
	ID          string
	SOWID       string
	Name        string
	Description string
	Status      string
	StartDate   time.Time
	EndDate     time.Time
	Budget      decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProjectFromSOW copia los campos del SOW. El SOW debe estar aprobado.
func NewProjectFromSOW(sow *SOW, id, createdBy string, now time.Time) (*Project, error) {
	if sow.Status != SOWStatusApproved {
		return nil, invalidTransition("SOW", sow.ID, sow.Status, SOWStatusApproved)
	}
	return &Project{
		ID:          id,
		SOWID:       sow.ID,
		Name:        sow.Title,
		Description: sow.Description,
		Status:      ProjectStatusInProgress,
		StartDate:   DateOnly(sow.StartDate),
		EndDate:     DateOnly(sow.EndDate),
		Budget:      sow.TotalBudget,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EnsureOpen un proyecto cerrado no admite cambios.
func (p *Project) EnsureOpen() error {
	if p.Status == ProjectStatusClosed {
		return invalidTransition("proyecto", p.ID, p.Status, ProjectStatusInProgress)
	}
	return nil
}

// Close in_progress → closed.
func (p *Project) Close(now time.Time) error {
	if err := p.EnsureOpen(); err != nil {
		return err
	}
	p.Status = ProjectStatusClosed
	p.UpdatedAt = now
	return nil
}

// Covers indica si la fecha cae dentro de [start_date, end_date].
func (p *Project) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}
