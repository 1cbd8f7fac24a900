package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agency-billing-api/internal/application/billing"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
)

// ClientHandler maneja las peticiones HTTP de clientes.
type ClientHandler struct {
	uc *billing.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *billing.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// Create POST /api/v1/clients
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/v1/clients?is_active=true&limit=20&offset=0
func (h *ClientHandler) List(c *fiber.Ctx) error {
	var in dto.ClientListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID GET /api/v1/clients/:id
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
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

// Update PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.UpdateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Deactivate DELETE /api/v1/clients/:id (baja lógica)
func (h *ClientHandler) Deactivate(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Deactivate(c.Context(), GetUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
