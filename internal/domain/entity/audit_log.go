package entity

import "time"

// Acciones registradas en auditoría.
const (
	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionDelete  = "delete"
	AuditActionSubmit  = "submit"
	AuditActionApprove = "approve"
	AuditActionReject  = "reject"
	AuditActionClose   = "close"
	AuditActionSend    = "send"
	AuditActionPay     = "pay"
)

// Tipos de entidad auditados.
const (
	EntityClient    = "client"
	EntitySOW       = "sow"
	EntityProject   = "project"
	EntityTimesheet = "timesheet"
	EntityInvoice   = "invoice"
	EntityUser      = "user"
)

// AuditLogEntry registro inmutable de una acción. OldValues/NewValues son JSON (vacío = null).
type AuditLogEntry struct {
	ID          string
	UserID      string
	Action      string
	EntityType  string
	EntityID    string
	OldValues   string
	NewValues   string
	Description string
	CreatedAt   time.Time
}
