package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// ClientUseCase registro de clientes. La baja es lógica (is_active=false).
type ClientUseCase struct {
	tx    repository.TxRunner
	audit *audit.Recorder
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(tx repository.TxRunner, recorder *audit.Recorder) *ClientUseCase {
	return &ClientUseCase{tx: tx, audit: recorder}
}

// Create crea un cliente activo. El email es único.
func (uc *ClientUseCase) Create(ctx context.Context, userID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	name, email := strings.TrimSpace(in.Name), normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name y email son obligatorios", domain.ErrInvalidInput)
	}
	terms := entity.DefaultPaymentTerms
	if in.PaymentTerms != nil {
		terms = *in.PaymentTerms
	}
	if terms < 0 {
		return nil, fmt.Errorf("%w: payment_terms no puede ser negativo", domain.ErrOutOfRange)
	}
	now := time.Now().UTC()
	client := &entity.Client{
		ID:             uuid.New().String(),
		Name:           name,
		Email:          email,
		Phone:          in.Phone,
		Company:        in.Company,
		BillingAddress: in.BillingAddress,
		PaymentTerms:   terms,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Clients.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: ya existe un cliente con email %s", domain.ErrAlreadyExists, email)
		}
		if err := repos.Clients.Create(ctx, client); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionCreate,
			EntityType:  entity.EntityClient,
			EntityID:    client.ID,
			NewValues:   clientValues(client),
			Description: fmt.Sprintf("Created client: %s", client.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Update aplica los campos enviados.
func (uc *ClientUseCase) Update(ctx context.Context, userID, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	var client *entity.Client
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if client, err = repository.FindClient(ctx, repos.Clients, id); err != nil {
			return err
		}
		before := clientValues(client)
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return fmt.Errorf("%w: name no puede estar vacío", domain.ErrInvalidInput)
			}
			client.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email == "" {
				return fmt.Errorf("%w: email no puede estar vacío", domain.ErrInvalidInput)
			}
			if email != client.Email {
				existing, err := repos.Clients.GetByEmail(ctx, email)
				if err != nil {
					return err
				}
				if existing != nil && existing.ID != client.ID {
					return fmt.Errorf("%w: ya existe un cliente con email %s", domain.ErrAlreadyExists, email)
				}
			}
			client.Email = email
		}
		if in.Phone != nil {
			client.Phone = *in.Phone
		}
		if in.Company != nil {
			client.Company = *in.Company
		}
		if in.BillingAddress != nil {
			client.BillingAddress = *in.BillingAddress
		}
		if in.PaymentTerms != nil {
			if *in.PaymentTerms < 0 {
				return fmt.Errorf("%w: payment_terms no puede ser negativo", domain.ErrOutOfRange)
			}
			client.PaymentTerms = *in.PaymentTerms
		}
		client.UpdatedAt = time.Now().UTC()
		if err := repos.Clients.Update(ctx, client); err != nil {
			return err
		}
		oldValues, newValues := audit.Diff(before, clientValues(client))
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionUpdate,
			EntityType:  entity.EntityClient,
			EntityID:    client.ID,
			OldValues:   oldValues,
			NewValues:   newValues,
			Description: fmt.Sprintf("Updated client: %s", client.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Deactivate baja lógica. Idempotente: desactivar un cliente inactivo no registra nada nuevo.
func (uc *ClientUseCase) Deactivate(ctx context.Context, userID, id string) (*dto.ClientResponse, error) {
	var client *entity.Client
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if client, err = repository.FindClient(ctx, repos.Clients, id); err != nil {
			return err
		}
		if !client.IsActive {
			return nil
		}
		client.IsActive = false
		client.UpdatedAt = time.Now().UTC()
		if err := repos.Clients.Update(ctx, client); err != nil {
			return err
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      entity.AuditActionDelete,
			EntityType:  entity.EntityClient,
			EntityID:    client.ID,
			OldValues:   audit.Values{"is_active": true},
			NewValues:   audit.Values{"is_active": false},
			Description: fmt.Sprintf("Deactivated client: %s", client.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Get cliente por id (activo o no).
func (uc *ClientUseCase) Get(ctx context.Context, id string) (*dto.ClientResponse, error) {
	var client *entity.Client
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		client, err = repository.FindClient(ctx, repos.Clients, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List lista clientes por nombre, opcionalmente filtrando por is_active.
func (uc *ClientUseCase) List(ctx context.Context, in dto.ClientListRequest) (*dto.ListResponse[dto.ClientResponse], error) {
	in.DefaultPage()
	var (
		list  []*entity.Client
		total int
	)
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.Clients.List(ctx, repository.ClientFilter{IsActive: in.IsActive}, in.Limit, in.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.ClientResponse]{
		Items: make([]dto.ClientResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, c := range list {
		out.Items = append(out.Items, *toClientResponse(c))
	}
	return out, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clientValues(c *entity.Client) audit.Values {
	return audit.Values{
		"name":            c.Name,
		"email":           c.Email,
		"phone":           c.Phone,
		"company":         c.Company,
		"billing_address": c.BillingAddress,
		"payment_terms":   c.PaymentTerms,
		"is_active":       c.IsActive,
	}
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		Company:        c.Company,
		BillingAddress: c.BillingAddress,
		PaymentTerms:   c.PaymentTerms,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
