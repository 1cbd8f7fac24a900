// Package memory implementa los repositorios sobre un almacén en proceso con
// transacciones serializadas: cada RunInTx trabaja sobre una copia del estado y
// la publica solo si fn no devuelve error. Se usa en tests y con APP_STORE=memory.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	clients    map[string]entity.Client
	sows       map[string]entity.SOW
	projects   map[string]entity.Project
	timesheets map[string]entity.Timesheet
	invoices   map[string]entity.Invoice
	lineItems  map[string]entity.LineItem
	users      map[string]entity.User
	auditLogs  []entity.AuditLogEntry
}

func newState() *state {
	return &state{
		clients:    map[string]entity.Client{},
		sows:       map[string]entity.SOW{},
		projects:   map[string]entity.Project{},
		timesheets: map[string]entity.Timesheet{},
		invoices:   map[string]entity.Invoice{},
		lineItems:  map[string]entity.LineItem{},
		users:      map[string]entity.User{},
	}
}

func (s *state) clone() *state {
	return &state{
		clients:    maps.Clone(s.clients),
		sows:       maps.Clone(s.sows),
		projects:   maps.Clone(s.projects),
		timesheets: maps.Clone(s.timesheets),
		invoices:   maps.Clone(s.invoices),
		lineItems:  maps.Clone(s.lineItems),
		users:      maps.Clone(s.users),
		auditLogs:  slices.Clone(s.auditLogs),
	}
}

// access abstrae si los repos leen el estado publicado (con lock) o la copia de una tx.
type access interface {
	view(fn func(st *state) error) error
	update(fn func(st *state) error) error
}

type storeAccess struct{ s *Store }

func (a storeAccess) view(fn func(st *state) error) error {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(a.s.st)
}

func (a storeAccess) update(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

type txAccess struct{ st *state }

func (a txAccess) view(fn func(st *state) error) error   { return fn(a.st) }
func (a txAccess) update(fn func(st *state) error) error { return fn(a.st) }

// Store almacén en memoria.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repositories devuelve repositorios fuera de transacción (lecturas y escrituras sueltas).
// No deben usarse dentro de RunInTx: la transacción mantiene el lock exclusivo.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(storeAccess{s: s})
}

// RunInTx serializa las transacciones; el estado solo se publica si fn no falla.
func (s *Store) RunInTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(newRepositories(txAccess{st: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

func newRepositories(a access) repository.Repositories {
	return repository.Repositories{
		Clients:    &ClientRepo{a: a},
		SOWs:       &SOWRepo{a: a},
		Projects:   &ProjectRepo{a: a},
		Timesheets: &TimesheetRepo{a: a},
		Invoices:   &InvoiceRepo{a: a},
		AuditLogs:  &AuditLogRepo{a: a},
		Users:      &UserRepo{a: a},
	}
}

// page aplica limit/offset sobre una lista ya ordenada.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func ptr[T any](v T) *T { return &v }
