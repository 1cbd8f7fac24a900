package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/auth"
	"github.com/jhoicas/agency-billing-api/internal/application/billing"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ClientUC    *billing.ClientUseCase
	SOWUC       *workflow.SOWUseCase
	ProjectUC   *workflow.ProjectUseCase
	TimesheetUC *workflow.TimesheetUseCase
	Generator   *billing.InvoiceGenerator
	Lifecycle   *billing.InvoiceLifecycle
	InvoicePDF  *billing.PDFUseCase
	Audit       *audit.Recorder
	JWTSecret   string
	AppName     string
	// InvoiceRateLimit generaciones de factura por usuario y minuto (0 = sin límite).
	InvoiceRateLimit int
}

// Router registra /health y las rutas de la API bajo /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api/v1")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(entity.RoleAdmin, entity.RoleProjectManager, entity.RoleAccountant)
	managers := RequireRole(entity.RoleAdmin, entity.RoleProjectManager)

	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.Register)

	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/", staff, clientHandler.List)
	clients.Get("/:id", staff, clientHandler.GetByID)
	clients.Post("/", managers, clientHandler.Create)
	clients.Put("/:id", managers, clientHandler.Update)
	clients.Delete("/:id", RequireRole(entity.RoleAdmin), clientHandler.Deactivate)

	sows := protected.Group("/sows")
	sowHandler := NewSOWHandler(deps.SOWUC)
	sows.Get("/", staff, sowHandler.List)
	sows.Get("/:id", staff, sowHandler.GetByID)
	sows.Post("/", managers, sowHandler.Create)
	sows.Put("/:id", managers, sowHandler.Update)
	sows.Post("/:id/submit", managers, sowHandler.Submit)
	sows.Post("/:id/approve", RequireRole(entity.RoleAdmin), sowHandler.Approve)

	projects := protected.Group("/projects")
	projectHandler := NewProjectHandler(deps.ProjectUC)
	projectReaders := RequireRole(entity.RoleAdmin, entity.RoleProjectManager, entity.RoleAccountant, entity.RoleConsultant)
	projects.Get("/", projectReaders, projectHandler.List)
	projects.Get("/:id", projectReaders, projectHandler.GetByID)
	projects.Get("/:id/summary", staff, projectHandler.Summary)
	projects.Post("/", managers, projectHandler.Create)
	projects.Put("/:id", managers, projectHandler.Update)
	projects.Post("/:id/close", RequireRole(entity.RoleAdmin), projectHandler.Close)

	timesheets := protected.Group("/timesheets")
	timesheetHandler := NewTimesheetHandler(deps.TimesheetUC)
	logHours := RequireRole(entity.RoleAdmin, entity.RoleProjectManager, entity.RoleConsultant)
	timesheets.Get("/", RequireRole(entity.RoleAdmin, entity.RoleProjectManager, entity.RoleConsultant, entity.RoleAccountant), timesheetHandler.List)
	timesheets.Get("/summary", RequireRole(entity.RoleAdmin, entity.RoleProjectManager, entity.RoleConsultant, entity.RoleAccountant), timesheetHandler.Summary)
	timesheets.Get("/:id", RequireRole(entity.RoleAdmin, entity.RoleProjectManager, entity.RoleConsultant, entity.RoleAccountant), timesheetHandler.GetByID)
	timesheets.Post("/", logHours, timesheetHandler.Create)
	timesheets.Put("/:id", logHours, timesheetHandler.Update)
	timesheets.Post("/:id/submit", logHours, timesheetHandler.Submit)
	timesheets.Post("/:id/approve", managers, timesheetHandler.Approve)
	timesheets.Post("/:id/reject", managers, timesheetHandler.Reject)

	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Generator, deps.Lifecycle, deps.InvoicePDF)
	invoiceReaders := staff
	invoices.Get("/", invoiceReaders, invoiceHandler.List)
	invoices.Get("/:id", invoiceReaders, invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceReaders, invoiceHandler.DownloadPDF)
	invoices.Get("/:id/validate", staff, invoiceHandler.Validate)
	invoices.Post("/", managers, invoiceRateLimit(deps.InvoiceRateLimit), invoiceHandler.Generate)
	invoices.Post("/:id/send", managers, invoiceHandler.Send)
	invoices.Post("/:id/mark-paid", RequireRole(entity.RoleAdmin, entity.RoleAccountant), invoiceHandler.MarkPaid)

	auditHandler := NewAuditHandler(deps.Audit)
	protected.Get("/audit-logs", RequireRole(entity.RoleAdmin), auditHandler.List)
}

// invoiceRateLimit limita la generación de facturas por usuario autenticado.
func invoiceRateLimit(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "invoice-generate:" + GetUserID(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas facturas generadas, intente en un minuto",
			})
		},
	})
}
