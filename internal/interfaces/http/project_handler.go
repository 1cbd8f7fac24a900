package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
	"github.com/jhoicas/agency-billing-api/internal/domain"
)

// ProjectHandler maneja el ciclo de vida de proyectos.
type ProjectHandler struct {
	uc *workflow.ProjectUseCase
}

// NewProjectHandler construye el handler.
func NewProjectHandler(uc *workflow.ProjectUseCase) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

// Create POST /api/v1/projects {"sow_id": "..."}
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.SOWID == "" {
		return fmt.Errorf("%w: sow_id es obligatorio", domain.ErrInvalidInput)
	}
	if err := checkIDs("sow_id", in.SOWID); err != nil {
		return err
	}
	out, err := h.uc.CreateFromSOW(c.Context(), GetUserID(c), in.SOWID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/v1/projects?status=in_progress
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	var in dto.ProjectListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID GET /api/v1/projects/:id
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
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

// Update PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.UpdateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateDescription(c.Context(), GetUserID(c), id, in.Description)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Close POST /api/v1/projects/:id/close (body opcional {"notes": "..."})
func (h *ProjectHandler) Close(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.CloseProjectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.uc.Close(c.Context(), GetUserID(c), id, in.Notes)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Summary GET /api/v1/projects/:id/summary?allocated_hours=1000
func (h *ProjectHandler) Summary(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	allocated := decimal.Zero
	if raw := c.Query("allocated_hours"); raw != "" {
		allocated, err = decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%w: allocated_hours %q no es un número", domain.ErrInvalidInput, raw)
		}
	}
	out, err := h.uc.Summary(c.Context(), id, allocated)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
