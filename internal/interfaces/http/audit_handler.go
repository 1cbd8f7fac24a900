package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
)

// AuditHandler expone la consulta de auditoría (solo lectura).
type AuditHandler struct {
	recorder *audit.Recorder
}

// NewAuditHandler construye el handler.
func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// List GET /api/v1/audit-logs?entity_type=sow&entity_id=&user_id=&action=
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var in dto.AuditLogListRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.recorder.Query(c.Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
