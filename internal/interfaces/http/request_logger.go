package http

import (
	"github.com/gofiber/contrib/fiberzerolog"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

// RequestLogger registra una línea por petición (método, url, status, latencia y error).
// 5xx sale en nivel error, 4xx en warn y el resto en info.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return fiberzerolog.New(fiberzerolog.Config{
		Logger: log.Zerolog(),
		Fields: []string{
			fiberzerolog.FieldMethod,
			fiberzerolog.FieldURL,
			fiberzerolog.FieldStatus,
			fiberzerolog.FieldLatency,
			fiberzerolog.FieldError,
		},
	})
}
