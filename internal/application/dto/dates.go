package dto

import (
	"fmt"
	"time"

	"github.com/jhoicas/agency-billing-api/internal/domain"
)

// ParseDate interpreta YYYY-MM-DD como fecha calendario UTC.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD, recibido %q", domain.ErrInvalidInput, field, value)
	}
	return t, nil
}

// ParseOptionalDate como ParseDate; vacío devuelve nil.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatOptionalDate YYYY-MM-DD o vacío si t es nil.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}
