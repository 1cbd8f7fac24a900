package repository

import (
	"context"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// ClientFilter filtros de listado de clientes.
type ClientFilter struct {
	IsActive *bool
}

// ClientRepository define el puerto de persistencia para Client.
// GetByID/GetByEmail devuelven (nil, nil) si no existe.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByEmail(ctx context.Context, email string) (*entity.Client, error)
	List(ctx context.Context, filter ClientFilter, limit, offset int) ([]*entity.Client, int, error)
	Update(ctx context.Context, client *entity.Client) error
}
