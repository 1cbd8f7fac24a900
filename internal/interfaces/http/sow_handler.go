package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
)

// SOWHandler maneja el flujo de SOWs.
type SOWHandler struct {
	uc *workflow.SOWUseCase
}

// NewSOWHandler construye el handler.
func NewSOWHandler(uc *workflow.SOWUseCase) *SOWHandler {
	return &SOWHandler{uc: uc}
}

// Create POST /api/v1/sows
func (h *SOWHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSOWRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := checkIDs("client_id", in.ClientID); err != nil {
		return err
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/v1/sows?status=pending&client_id=...
func (h *SOWHandler) List(c *fiber.Ctx) error {
	var in dto.SOWListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := checkIDs("client_id", in.ClientID); err != nil {
		return err
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID GET /api/v1/sows/:id
func (h *SOWHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update PUT /api/v1/sows/:id (solo draft)
func (h *SOWHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.UpdateSOWRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Submit POST /api/v1/sows/:id/submit
func (h *SOWHandler) Submit(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Submit(c.Context(), GetUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Approve POST /api/v1/sows/:id/approve {"approved": true|false, "notes": "..."}
func (h *SOWHandler) Approve(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.ApproveSOWRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Approve(c.Context(), GetUserID(c), id, in.Approved, in.Notes)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
