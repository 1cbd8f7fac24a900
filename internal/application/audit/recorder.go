// Package audit registra y consulta el rastro de auditoría. Record se invoca con el
// repositorio de la transacción en curso: la entrada se confirma o se descarta junto
// con la mutación que documenta.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// Values instantánea de campos de una entidad antes o después de un cambio.
type Values map[string]any

// Entry datos de una acción a registrar.
type Entry struct {
	UserID      string
	Action      string
	EntityType  string
	EntityID    string
	OldValues   Values
	NewValues   Values
	Description string
}

// Recorder registra entradas de auditoría y las consulta.
type Recorder struct {
	tx  repository.TxRunner
	now func() time.Time
}

// NewRecorder construye el recorder. tx solo se usa para consultas.
func NewRecorder(tx repository.TxRunner) *Recorder {
	return &Recorder{tx: tx, now: time.Now}
}

// Record serializa old/new a JSON e inserta una entrada inmutable con el repo recibido.
// Los errores de almacenamiento se propagan: el caller aborta la transacción.
func (r *Recorder) Record(ctx context.Context, repo repository.AuditLogRepository, e Entry) error {
	oldJSON, err := encode(e.OldValues)
	if err != nil {
		return fmt.Errorf("encode old values: %w", err)
	}
	newJSON, err := encode(e.NewValues)
	if err != nil {
		return fmt.Errorf("encode new values: %w", err)
	}
	entry := &entity.AuditLogEntry{
		ID:          uuid.New().String(),
		UserID:      e.UserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		OldValues:   oldJSON,
		NewValues:   newJSON,
		Description: e.Description,
		CreatedAt:   r.now().UTC(),
	}
	if err := repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("record audit %s %s: %w", e.Action, e.EntityType, err)
	}
	return nil
}

// Query devuelve las entradas que cumplen el filtro, más recientes primero.
func (r *Recorder) Query(ctx context.Context, in dto.AuditLogListRequest) (*dto.ListResponse[dto.AuditLogResponse], error) {
	in.DefaultPage()
	filter := repository.AuditLogFilter{
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		UserID:     in.UserID,
		Action:     in.Action,
	}
	var (
		list  []*entity.AuditLogEntry
		total int
	)
	err := r.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		list, total, err = repos.AuditLogs.List(ctx, filter, in.Limit, in.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.AuditLogResponse]{
		Items: make([]dto.AuditLogResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}
	for _, e := range list {
		item, err := toResponse(e)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func toResponse(e *entity.AuditLogEntry) (dto.AuditLogResponse, error) {
	oldValues, err := decode(e.OldValues)
	if err != nil {
		return dto.AuditLogResponse{}, fmt.Errorf("decode old values of %s: %w", e.ID, err)
	}
	newValues, err := decode(e.NewValues)
	if err != nil {
		return dto.AuditLogResponse{}, fmt.Errorf("decode new values of %s: %w", e.ID, err)
	}
	return dto.AuditLogResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		OldValues:   oldValues,
		NewValues:   newValues,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}, nil
}

func encode(v Values) (string, error) {
	if len(v) == 0 {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diff devuelve solo las claves cuyo valor cambió entre before y after.
func Diff(before, after Values) (Values, Values) {
	oldOut, newOut := Values{}, Values{}
	for k, nv := range after {
		ov, ok := before[k]
		if ok && fmt.Sprint(ov) == fmt.Sprint(nv) {
			continue
		}
		oldOut[k] = ov
		newOut[k] = nv
	}
	return oldOut, newOut
}
