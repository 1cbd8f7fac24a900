package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con contexto: fmt.Errorf("%w: ...", ErrInvalidState).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidState  = errors.New("transición inválida para el estado actual")
	ErrOutOfRange    = errors.New("valor fuera de rango")
	ErrAlreadyExists = errors.New("el recurso ya existe")
	ErrValidation    = errors.New("validación fallida")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
)
