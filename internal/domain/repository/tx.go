package repository

import "context"

// Repositories agrupa los repositorios atados a una misma conexión o transacción.
type Repositories struct {
	Clients    ClientRepository
	SOWs       SOWRepository
	Projects   ProjectRepository
	Timesheets TimesheetRepository
	Invoices   InvoiceRepository
	AuditLogs  AuditLogRepository
	Users      UserRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Si fn devuelve error se hace rollback de todo (entidad + auditoría).
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos Repositories) error) error
}
