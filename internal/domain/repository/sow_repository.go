package repository

import (
	"context"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// SOWFilter filtros de listado de SOWs.
type SOWFilter struct {
	Status   string
	ClientID string
}

// SOWRepository define el puerto de persistencia para SOW.
type SOWRepository interface {
	Create(ctx context.Context, sow *entity.SOW) error
	GetByID(ctx context.Context, id string) (*entity.SOW, error)
	List(ctx context.Context, filter SOWFilter, limit, offset int) ([]*entity.SOW, int, error)
	// Update persiste el SOW solo si su estado almacenado sigue siendo expectedStatus;
	// si no, devuelve domain.ErrInvalidState.
	Update(ctx context.Context, sow *entity.SOW, expectedStatus string) error
}
