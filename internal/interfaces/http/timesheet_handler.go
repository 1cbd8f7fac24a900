package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
	"github.com/jhoicas/agency-billing-api/internal/domain"
)

// TimesheetHandler maneja el flujo de timesheets. Un consultor solo ve y modifica las suyas.
type TimesheetHandler struct {
	uc *workflow.TimesheetUseCase
}

// NewTimesheetHandler construye el handler.
func NewTimesheetHandler(uc *workflow.TimesheetUseCase) *TimesheetHandler {
	return &TimesheetHandler{uc: uc}
}

// Create POST /api/v1/timesheets
func (h *TimesheetHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTimesheetRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if isConsultant(c) {
		if in.ConsultantID != "" && in.ConsultantID != GetUserID(c) {
			return fmt.Errorf("%w: un consultor solo registra sus propias horas", domain.ErrForbidden)
		}
		in.ConsultantID = GetUserID(c)
	}
	if err := checkIDs("project_id", in.ProjectID, "consultant_id", in.ConsultantID); err != nil {
		return err
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/v1/timesheets?project_id=&consultant_id=&status=&from=&to=
func (h *TimesheetHandler) List(c *fiber.Ctx) error {
	var in dto.TimesheetListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.scopeFilter(c, &in.TimesheetFilterRequest); err != nil {
		return err
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Summary GET /api/v1/timesheets/summary (mismos filtros que List)
func (h *TimesheetHandler) Summary(c *fiber.Ctx) error {
	var in dto.TimesheetFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.scopeFilter(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Summary(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID GET /api/v1/timesheets/:id
func (h *TimesheetHandler) GetByID(c *fiber.Ctx) error {
	id, err := h.ownedID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update PUT /api/v1/timesheets/:id (solo draft, nunca facturadas)
func (h *TimesheetHandler) Update(c *fiber.Ctx) error {
	id, err := h.ownedID(c)
	if err != nil {
		return err
	}
	var in dto.UpdateTimesheetRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Submit POST /api/v1/timesheets/:id/submit
func (h *TimesheetHandler) Submit(c *fiber.Ctx) error {
	id, err := h.ownedID(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Submit(c.Context(), GetUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Approve POST /api/v1/timesheets/:id/approve
func (h *TimesheetHandler) Approve(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Approve(c.Context(), GetUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Reject POST /api/v1/timesheets/:id/reject (body opcional {"reason": "..."})
func (h *TimesheetHandler) Reject(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var in dto.RejectTimesheetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.uc.Reject(c.Context(), GetUserID(c), id, in.Reason)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ownedID lee :id y, para consultores, exige que la timesheet sea propia.
func (h *TimesheetHandler) ownedID(c *fiber.Ctx) (string, error) {
	id, err := idParam(c)
	if err != nil {
		return "", err
	}
	if !isConsultant(c) {
		return id, nil
	}
	ts, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return "", err
	}
	if ts.ConsultantID != GetUserID(c) {
		return "", fmt.Errorf("%w: la timesheet %s pertenece a otro consultor", domain.ErrForbidden, id)
	}
	return id, nil
}

// scopeFilter restringe los filtros de un consultor a sus propias horas.
func (h *TimesheetHandler) scopeFilter(c *fiber.Ctx, f *dto.TimesheetFilterRequest) error {
	if isConsultant(c) {
		f.ConsultantID = GetUserID(c)
	}
	return checkIDs("project_id", f.ProjectID, "consultant_id", f.ConsultantID)
}
