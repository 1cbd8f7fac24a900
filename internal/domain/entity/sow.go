package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/domain"
)

// Estados del SOW: draft → pending → approved | rejected.
const (
	SOWStatusDraft    = "draft"
	SOWStatusPending  = "pending"
	SOWStatusApproved = "approved"
	SOWStatusRejected = "rejected"
)

// SOW (Statement of Work) acuerdo con un cliente: alcance, fechas, tarifa y presupuesto.
type SOW struct {
	ID          string
	ClientID    string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Rate        decimal.Decimal
	TotalBudget decimal.Decimal
	Status      string
	CreatedBy   string
	ApprovedBy  string // vacío hasta la decisión
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateTerms verifica end_date > start_date, rate > 0 y total_budget > 0.
func (s *SOW) ValidateTerms() error {
	if !DateOnly(s.EndDate).After(DateOnly(s.StartDate)) {
		return fmt.Errorf("%w: end_date (%s) debe ser posterior a start_date (%s)",
			domain.ErrOutOfRange, s.EndDate.Format(time.DateOnly), s.StartDate.Format(time.DateOnly))
	}
	if !s.Rate.IsPositive() {
		return fmt.Errorf("%w: rate debe ser mayor que 0", domain.ErrOutOfRange)
	}
	if !s.TotalBudget.IsPositive() {
		return fmt.Errorf("%w: total_budget debe ser mayor que 0", domain.ErrOutOfRange)
	}
	return nil
}

// EnsureEditable solo un SOW en draft admite cambios.
func (s *SOW) EnsureEditable() error {
	if s.Status != SOWStatusDraft {
		return invalidTransition("SOW", s.ID, s.Status, SOWStatusDraft)
	}
	return nil
}

// Submit draft → pending.
func (s *SOW) Submit(now time.Time) error {
	if s.Status != SOWStatusDraft {
		return invalidTransition("SOW", s.ID, s.Status, SOWStatusDraft)
	}
	s.Status = SOWStatusPending
	s.UpdatedAt = now
	return nil
}

// Decide pending → approved | rejected, sellando aprobador y fecha en ambos casos.
func (s *SOW) Decide(approved bool, approverID string, now time.Time) error {
	if s.Status != SOWStatusPending {
		return invalidTransition("SOW", s.ID, s.Status, SOWStatusPending)
	}
	s.Status = SOWStatusRejected
	if approved {
		s.Status = SOWStatusApproved
	}
	s.ApprovedBy = approverID
	s.ApprovedAt = timePtr(now)
	s.UpdatedAt = now
	return nil
}
