package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/auth"
	"github.com/jhoicas/agency-billing-api/internal/application/billing"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/agency-billing-api/internal/interfaces/http"
	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

type stubPDF struct{}

func (stubPDF) GenerateInvoicePDF(_ context.Context, doc billing.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF-1.4 " + doc.Invoice.InvoiceNumber), nil
}

type api struct {
	app    *fiber.App
	tokens map[string]string // rol -> Bearer token
	ids    map[string]string // rol -> user id
}

func newAPI(t *testing.T, rateLimit int) *api {
	t.Helper()
	store := memory.NewStore()
	rec := audit.NewRecorder(store)
	cfg := billing.Config{Now: func() time.Time { return time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC) }}
	authUC := auth.NewAuthUseCase(store, rec, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	log := logger.Nop()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           authUC,
		ClientUC:         billing.NewClientUseCase(store, rec),
		SOWUC:            workflow.NewSOWUseCase(store, rec),
		ProjectUC:        workflow.NewProjectUseCase(store, rec),
		TimesheetUC:      workflow.NewTimesheetUseCase(store, rec),
		Generator:        billing.NewInvoiceGenerator(store, rec, cfg, log),
		Lifecycle:        billing.NewInvoiceLifecycle(store, rec, cfg),
		InvoicePDF:       billing.NewPDFUseCase(store, stubPDF{}),
		Audit:            rec,
		JWTSecret:        testJWTSecret,
		AppName:          "agency-billing-test",
		InvoiceRateLimit: rateLimit,
	})

	a := &api{app: app, tokens: map[string]string{}, ids: map[string]string{}}
	for _, role := range []string{entity.RoleAdmin, entity.RoleProjectManager, entity.RoleConsultant, entity.RoleAccountant, "other_consultant"} {
		userRole := role
		if role == "other_consultant" {
			userRole = entity.RoleConsultant
		}
		email := role + "@agency.test"
		u, err := authUC.RegisterUser(context.Background(), "", dto.RegisterRequest{
			Email: email, Password: "secreto-largo", FullName: role, Role: userRole,
		})
		require.NoError(t, err)
		a.ids[role] = u.ID

		var login dto.LoginResponse
		status := a.call(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: "secreto-largo"}, &login)
		require.Equal(t, http.StatusOK, status)
		a.tokens[role] = login.Token
	}
	return a
}

// call hace la petición como el rol dado ("" = sin token) y decodifica la respuesta en out.
func (a *api) call(t *testing.T, method, path, role string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[role])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, out), string(raw))
		}
	}
	return resp.StatusCode
}

// approvedProject recorre cliente → SOW → aprobación → proyecto por HTTP.
func (a *api) approvedProject(t *testing.T) dto.ProjectResponse {
	t.Helper()
	var client dto.ClientResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/clients", entity.RoleProjectManager,
		dto.CreateClientRequest{Name: "Acme", Email: uuid.NewString() + "@acme.test"}, &client))

	var sow dto.SOWResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/sows", entity.RoleProjectManager,
		map[string]any{"client_id": client.ID, "title": "Portal", "start_date": "2024-06-01", "end_date": "2024-06-30",
			"rate": "150", "total_budget": "100000"}, &sow))
	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/sows/"+sow.ID+"/submit", entity.RoleProjectManager, nil, nil))
	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/sows/"+sow.ID+"/approve", entity.RoleAdmin,
		dto.ApproveSOWRequest{Approved: true}, nil))

	var project dto.ProjectResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/projects", entity.RoleProjectManager,
		dto.CreateProjectRequest{SOWID: sow.ID}, &project))
	return project
}

func (a *api) approvedTimesheet(t *testing.T, projectID, role, day, hours string) dto.TimesheetResponse {
	t.Helper()
	var ts dto.TimesheetResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/timesheets", role,
		map[string]any{"project_id": projectID, "work_date": day, "hours_logged": hours, "billing_rate": "150"}, &ts))
	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/timesheets/"+ts.ID+"/submit", role, nil, nil))
	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/timesheets/"+ts.ID+"/approve", entity.RoleProjectManager, nil, &ts))
	return ts
}

func TestHealth(t *testing.T) {
	a := newAPI(t, 0)
	var body map[string]string
	assert.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBillingFlowOverHTTP(t *testing.T) {
	a := newAPI(t, 0)
	project := a.approvedProject(t)

	ts := a.approvedTimesheet(t, project.ID, entity.RoleConsultant, "2024-06-10", "8")
	assert.Equal(t, a.ids[entity.RoleConsultant], ts.ConsultantID, "el consultor queda como dueño")
	a.approvedTimesheet(t, project.ID, entity.RoleConsultant, "2024-06-11", "8")
	a.approvedTimesheet(t, project.ID, entity.RoleConsultant, "2024-06-12", "8")

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/invoices", entity.RoleProjectManager,
		dto.GenerateInvoiceRequest{ProjectID: project.ID, InvoiceDate: "2024-07-01"}, &inv))
	assert.Equal(t, "INV-20240701-0001", inv.InvoiceNumber)
	assert.Equal(t, "3600", inv.Subtotal.String())
	assert.Equal(t, "360", inv.TaxAmount.String())
	assert.Equal(t, "3960", inv.TotalAmount.String())
	assert.Len(t, inv.Lines, 3)

	var valid dto.InvoiceValidationResponse
	assert.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/v1/invoices/"+inv.ID+"/validate", entity.RoleAccountant, nil, &valid))
	assert.True(t, valid.Valid)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/invoices/"+inv.ID+"/mark-paid", entity.RoleProjectManager, nil, &errBody))
	assert.Equal(t, "FORBIDDEN", errBody.Code)

	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/invoices/"+inv.ID+"/send", entity.RoleProjectManager, nil, &inv))
	assert.Equal(t, entity.InvoiceStatusSent, inv.Status)
	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/invoices/"+inv.ID+"/mark-paid", entity.RoleAccountant,
		dto.MarkPaidRequest{PaymentDate: "2024-07-15"}, &inv))
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)

	// enviar una factura pagada es un conflicto de estado
	assert.Equal(t, http.StatusConflict, a.call(t, http.MethodPost, "/api/v1/invoices/"+inv.ID+"/send", entity.RoleProjectManager, nil, &errBody))
	assert.Equal(t, "INVALID_STATE", errBody.Code)

	// sin timesheets pendientes no hay nada que facturar
	assert.Equal(t, http.StatusUnprocessableEntity, a.call(t, http.MethodPost, "/api/v1/invoices", entity.RoleProjectManager,
		dto.GenerateInvoiceRequest{ProjectID: project.ID}, &errBody))
	assert.Equal(t, "VALIDATION", errBody.Code)

	var logs dto.ListResponse[dto.AuditLogResponse]
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/v1/audit-logs?entity_type=invoice&entity_id="+inv.ID, entity.RoleAdmin, nil, &logs))
	require.Len(t, logs.Items, 3, "generate, send y pay")
	assert.Equal(t, entity.AuditActionPay, logs.Items[0].Action)
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodGet, "/api/v1/audit-logs", entity.RoleAccountant, nil, nil))
}

func TestInvoicePDFDownload(t *testing.T) {
	a := newAPI(t, 0)
	project := a.approvedProject(t)
	a.approvedTimesheet(t, project.ID, entity.RoleConsultant, "2024-06-10", "8")

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/invoices", entity.RoleProjectManager,
		dto.GenerateInvoiceRequest{ProjectID: project.ID, InvoiceDate: "2024-07-01"}, &inv))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+inv.ID+"/pdf", nil)
	req.Header.Set("Authorization", "Bearer "+a.tokens[entity.RoleAccountant])
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice_INV-20240701-0001.pdf")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 INV-20240701-0001", string(raw))
}

func TestRolePolicy(t *testing.T) {
	a := newAPI(t, 0)
	project := a.approvedProject(t)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/projects/"+project.ID+"/close", entity.RoleProjectManager, nil, &errBody))
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/sows", entity.RoleConsultant, map[string]any{}, &errBody))
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/users", entity.RoleProjectManager,
		dto.RegisterRequest{Email: "x@agency.test", Password: "secreto-largo"}, &errBody))
	assert.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodGet, "/api/v1/clients", "", nil, &errBody))
	assert.Equal(t, "MISSING_TOKEN", errBody.Code)

	var closed dto.ProjectResponse
	assert.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/projects/"+project.ID+"/close", entity.RoleAdmin,
		dto.CloseProjectRequest{Notes: "entregado"}, &closed))
	assert.Equal(t, entity.ProjectStatusClosed, closed.Status)
}

func TestClientRoleHasNoReadScope(t *testing.T) {
	a := newAPI(t, 0)
	project := a.approvedProject(t)
	a.approvedTimesheet(t, project.ID, entity.RoleConsultant, "2024-06-10", "8")

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/invoices", entity.RoleProjectManager,
		dto.GenerateInvoiceRequest{ProjectID: project.ID, InvoiceDate: "2024-07-01"}, &inv))

	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/users", entity.RoleAdmin,
		dto.RegisterRequest{Email: "cliente@acme.test", Password: "secreto-largo", FullName: "Acme", Role: entity.RoleClient}, nil))
	var login dto.LoginResponse
	require.Equal(t, http.StatusOK, a.call(t, http.MethodPost, "/api/v1/auth/login", "",
		dto.LoginRequest{Email: "cliente@acme.test", Password: "secreto-largo"}, &login))
	a.tokens[entity.RoleClient] = login.Token

	for _, path := range []string{
		"/api/v1/invoices",
		"/api/v1/invoices/" + inv.ID,
		"/api/v1/invoices/" + inv.ID + "/pdf",
		"/api/v1/projects",
		"/api/v1/projects/" + project.ID,
		"/api/v1/clients",
	} {
		var errBody dto.ErrorResponse
		assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodGet, path, entity.RoleClient, nil, &errBody), path)
		assert.Equal(t, "FORBIDDEN", errBody.Code, path)
	}
}

func TestConsultantOwnsTimesheets(t *testing.T) {
	a := newAPI(t, 0)
	project := a.approvedProject(t)

	var own dto.TimesheetResponse
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/timesheets", entity.RoleConsultant,
		map[string]any{"project_id": project.ID, "work_date": "2024-06-10", "hours_logged": "8", "billing_rate": "150"}, &own))

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodGet, "/api/v1/timesheets/"+own.ID, "other_consultant", nil, &errBody))
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/timesheets/"+own.ID+"/submit", "other_consultant", nil, &errBody))
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/timesheets/"+own.ID+"/approve", entity.RoleConsultant, nil, &errBody))
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/api/v1/timesheets", "other_consultant",
		map[string]any{"project_id": project.ID, "consultant_id": a.ids[entity.RoleConsultant], "work_date": "2024-06-10",
			"hours_logged": "8", "billing_rate": "150"}, &errBody))

	var list dto.ListResponse[dto.TimesheetResponse]
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/v1/timesheets?project_id="+project.ID, "other_consultant", nil, &list))
	assert.Empty(t, list.Items, "el filtro se limita a las horas propias")
	require.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/v1/timesheets?project_id="+project.ID, entity.RoleProjectManager, nil, &list))
	assert.Len(t, list.Items, 1)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t, 0)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, a.call(t, http.MethodGet, "/api/v1/sows/no-es-uuid", entity.RoleAdmin, nil, &errBody))
	assert.Equal(t, "INVALID_INPUT", errBody.Code)

	assert.Equal(t, http.StatusNotFound, a.call(t, http.MethodGet, "/api/v1/sows/"+uuid.NewString(), entity.RoleAdmin, nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)

	var client dto.ClientResponse
	email := uuid.NewString() + "@acme.test"
	require.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/clients", entity.RoleAdmin,
		dto.CreateClientRequest{Name: "Acme", Email: email}, &client))
	assert.Equal(t, http.StatusConflict, a.call(t, http.MethodPost, "/api/v1/clients", entity.RoleAdmin,
		dto.CreateClientRequest{Name: "Otra", Email: email}, &errBody))
	assert.Equal(t, "ALREADY_EXISTS", errBody.Code)

	assert.Equal(t, http.StatusUnprocessableEntity, a.call(t, http.MethodPost, "/api/v1/sows", entity.RoleProjectManager,
		map[string]any{"client_id": client.ID, "title": "X", "start_date": "2024-06-30", "end_date": "2024-06-01",
			"rate": "150", "total_budget": "1000"}, &errBody))
	assert.Equal(t, "OUT_OF_RANGE", errBody.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", bytes.NewBufferString("{no json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.tokens[entity.RoleAdmin])
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInvoiceGenerationRateLimit(t *testing.T) {
	a := newAPI(t, 1)
	project := a.approvedProject(t)
	a.approvedTimesheet(t, project.ID, entity.RoleConsultant, "2024-06-10", "8")

	req := dto.GenerateInvoiceRequest{ProjectID: project.ID, InvoiceDate: "2024-07-01"}
	assert.Equal(t, http.StatusCreated, a.call(t, http.MethodPost, "/api/v1/invoices", entity.RoleProjectManager, req, nil))

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusTooManyRequests, a.call(t, http.MethodPost, "/api/v1/invoices", entity.RoleProjectManager, req, &errBody))
	assert.Equal(t, "RATE_LIMITED", errBody.Code)
}
