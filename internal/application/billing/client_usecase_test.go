package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

func TestClient_CreateDefaultsAndDuplicate(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	c, err := e.clients.Create(ctx, adminID, dto.CreateClientRequest{Name: "Acme", Email: " Billing@Acme.test "})
	require.NoError(t, err)
	assert.Equal(t, "billing@acme.test", c.Email)
	assert.Equal(t, entity.DefaultPaymentTerms, c.PaymentTerms)
	assert.True(t, c.IsActive)

	_, err = e.clients.Create(ctx, adminID, dto.CreateClientRequest{Name: "Otra", Email: "billing@acme.test"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = e.clients.Create(ctx, adminID, dto.CreateClientRequest{Name: "", Email: "x@y.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_UpdateEmailConflict(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.clients.Create(ctx, adminID, dto.CreateClientRequest{Name: "A", Email: "a@x.test"})
	require.NoError(t, err)
	_, err = e.clients.Create(ctx, adminID, dto.CreateClientRequest{Name: "B", Email: "b@x.test"})
	require.NoError(t, err)

	taken := "b@x.test"
	_, err = e.clients.Update(ctx, adminID, a.ID, dto.UpdateClientRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	phone := "555-0100"
	updated, err := e.clients.Update(ctx, adminID, a.ID, dto.UpdateClientRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "a@x.test", updated.Email)
}

func TestClient_DeactivateKeepsHistory(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, p := e.projectFor(t, 30)
	e.approvedTimesheet(t, p.ID, "2024-06-10", "8", "150")

	out, err := e.clients.Deactivate(ctx, adminID, c.ID)
	require.NoError(t, err)
	assert.False(t, out.IsActive)

	// el cliente inactivo sigue siendo referencia válida para facturar trabajo previo
	inv, err := e.generator.Generate(ctx, pmID, dto.GenerateInvoiceRequest{ProjectID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, inv.ClientID)

	active := true
	list, err := e.clients.List(ctx, dto.ClientListRequest{IsActive: &active})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	got, err := e.clients.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	logs, err := e.recorder.Query(ctx, dto.AuditLogListRequest{EntityType: entity.EntityClient, Action: entity.AuditActionDelete})
	require.NoError(t, err)
	assert.Len(t, logs.Items, 1)
}
