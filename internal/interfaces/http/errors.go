package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

// errorKinds mapea cada sentinel del dominio a status HTTP y código de error.
var errorKinds = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrAlreadyExists, fiber.StatusConflict, "ALREADY_EXISTS"},
	{domain.ErrOutOfRange, fiber.StatusUnprocessableEntity, "OUT_OF_RANGE"},
	{domain.ErrValidation, fiber.StatusUnprocessableEntity, "VALIDATION"},
	{domain.ErrInvalidInput, fiber.StatusUnprocessableEntity, "INVALID_INPUT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// ErrorHandler traduce los errores devueltos por los handlers a dto.ErrorResponse.
// Los errores sin tipo se registran y responden 500 sin exponer el detalle.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		for _, k := range errorKinds {
			if errors.Is(err, k.err) {
				return c.Status(k.status).JSON(dto.ErrorResponse{Code: k.code, Message: err.Error()})
			}
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// idParam lee :id y exige un UUID.
func idParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if err := uuid.Validate(id); err != nil {
		return "", invalidID("id", id)
	}
	return id, nil
}

// checkIDs valida filtros opcionales de tipo UUID; vacío no filtra.
func checkIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		if err := uuid.Validate(pairs[i+1]); err != nil {
			return invalidID(pairs[i], pairs[i+1])
		}
	}
	return nil
}

func invalidID(field, value string) error {
	return fmt.Errorf("%w: %s no es un UUID válido: %q", domain.ErrInvalidInput, field, value)
}
