package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agency-billing-api/internal/application/billing"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
)

// InvoiceHandler maneja generación, consulta y ciclo de vida de facturas.
type InvoiceHandler struct {
	generator *billing.InvoiceGenerator
	lifecycle *billing.InvoiceLifecycle
	pdf       *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(generator *billing.InvoiceGenerator, lifecycle *billing.InvoiceLifecycle, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{generator: generator, lifecycle: lifecycle, pdf: pdf}
}

// Generate crea una factura draft con las timesheets aprobadas y no facturadas del proyecto.
// POST /api/v1/invoices
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := checkIDs("project_id", in.ProjectID, "client_id", in.ClientID); err != nil {
		return err
	}
	out, err := h.generator.Generate(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/v1/invoices?client_id=&project_id=&status=&from=&to=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.InvoiceListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := checkIDs("client_id", in.ClientID, "project_id", in.ProjectID); err != nil {
		return err
	}
	out, err := h.generator.List(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID devuelve la factura con sus líneas.
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.generator.Detail(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Send POST /api/v1/invoices/:id/send
func (h *InvoiceHandler) Send(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.lifecycle.Send(c.Context(), GetUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// MarkPaid POST /api/v1/invoices/:id/mark-paid (body opcional {"payment_date": "YYYY-MM-DD"})
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.MarkPaidRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.lifecycle.MarkPaid(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Validate recalcula los totales desde las líneas; 422 si no coinciden.
// GET /api/v1/invoices/:id/validate
func (h *InvoiceHandler) Validate(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.generator.ValidateTotals(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(dto.InvoiceValidationResponse{InvoiceID: id, Valid: true})
}

// DownloadPDF GET /api/v1/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	pdfBytes, filename, err := h.pdf.DownloadInvoicePDF(c.Context(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(filename)
	return c.Send(pdfBytes)
}
