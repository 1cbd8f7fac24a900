package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleConsultant     = "consultant"
	RoleAccountant     = "accountant"
	RoleClient         = "client"
)

// ValidRole indica si el rol es conocido.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleProjectManager, RoleConsultant, RoleAccountant, RoleClient:
		return true
	}
	return false
}

// User usuario del sistema (consultor, PM, contador, admin o contacto de cliente).
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
