package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/domain/billing"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// InvoiceLifecycle transiciones de estado de la factura: draft → sent → paid (y draft → paid).
type InvoiceLifecycle struct {
	tx    repository.TxRunner
	audit *audit.Recorder
	cfg   Config
}

// NewInvoiceLifecycle construye el caso de uso.
func NewInvoiceLifecycle(tx repository.TxRunner, recorder *audit.Recorder, cfg Config) *InvoiceLifecycle {
	return &InvoiceLifecycle{tx: tx, audit: recorder, cfg: cfg.withDefaults()}
}

// Send draft → sent.
func (uc *InvoiceLifecycle) Send(ctx context.Context, userID, invoiceID string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, userID, invoiceID, entity.AuditActionSend, func(inv *entity.Invoice, now time.Time) (string, error) {
		return fmt.Sprintf("Invoice %s sent", inv.InvoiceNumber), inv.Send(now)
	})
}

// MarkPaid cualquier estado no pagado → paid. paymentDate vacío = hoy.
func (uc *InvoiceLifecycle) MarkPaid(ctx context.Context, userID, invoiceID string, in dto.MarkPaidRequest) (*dto.InvoiceResponse, error) {
	paymentDate := uc.cfg.today()
	if in.PaymentDate != "" {
		d, err := dto.ParseDate("payment_date", in.PaymentDate)
		if err != nil {
			return nil, err
		}
		paymentDate = d
	}
	return uc.transition(ctx, userID, invoiceID, entity.AuditActionPay, func(inv *entity.Invoice, now time.Time) (string, error) {
		if err := inv.MarkPaid(paymentDate, now); err != nil {
			return "", err
		}
		return fmt.Sprintf("Invoice %s marked as paid on %s", inv.InvoiceNumber, dto.FormatDate(paymentDate)), nil
	})
}

func (uc *InvoiceLifecycle) transition(ctx context.Context, userID, invoiceID, action string, apply func(*entity.Invoice, time.Time) (string, error)) (*dto.InvoiceResponse, error) {
	var inv *entity.Invoice
	err := uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		var err error
		if inv, err = repository.FindInvoice(ctx, repos.Invoices, invoiceID); err != nil {
			return err
		}
		from := inv.Status
		description, err := apply(inv, uc.cfg.Now().UTC())
		if err != nil {
			return err
		}
		if err := repos.Invoices.Update(ctx, inv, from); err != nil {
			return err
		}
		newValues := audit.Values{"status": inv.Status}
		if inv.PaymentDate != nil {
			newValues["payment_date"] = dto.FormatDate(*inv.PaymentDate)
		}
		return uc.audit.Record(ctx, repos.AuditLogs, audit.Entry{
			UserID:      userID,
			Action:      action,
			EntityType:  entity.EntityInvoice,
			EntityID:    inv.ID,
			OldValues:   audit.Values{"status": from},
			NewValues:   newValues,
			Description: description,
		})
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, nil, billing.DaysOverdue(inv.DueDate, inv.PaymentDate, uc.cfg.today())), nil
}
