package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/agency-billing-api/internal/domain"
)

// invalidTransition construye el error de transición con el estado actual y los esperados.
func invalidTransition(kind, id, current string, expected ...string) error {
	return fmt.Errorf("%w: %s %s está en estado %q (se requiere %s)",
		domain.ErrInvalidState, kind, id, current, strings.Join(quoteAll(expected), " o "))
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

// DateOnly trunca a la fecha calendario (medianoche UTC), como una columna DATE.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }
