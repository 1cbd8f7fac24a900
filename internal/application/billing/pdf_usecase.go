package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
)

// PDFUseCase genera la representación en PDF de una factura.
type PDFUseCase struct {
	tx        repository.TxRunner
	generator InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(tx repository.TxRunner, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{tx: tx, generator: generator}
}

// DownloadInvoicePDF carga factura, cliente, proyecto y líneas y devuelve el PDF y su nombre de archivo.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	var doc InvoiceDocument
	err = uc.tx.RunInTx(ctx, func(repos repository.Repositories) error {
		inv, err := repository.FindInvoice(ctx, repos.Invoices, invoiceID)
		if err != nil {
			return err
		}
		client, err := repository.FindClient(ctx, repos.Clients, inv.ClientID)
		if err != nil {
			return err
		}
		var project *entity.Project
		if inv.ProjectID != "" {
			if project, err = repos.Projects.GetByID(ctx, inv.ProjectID); err != nil {
				return err
			}
		}
		lines, err := repos.Invoices.GetLineItems(ctx, invoiceID)
		if err != nil {
			return err
		}
		doc = InvoiceDocument{Invoice: inv, Client: client, Project: project, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("invoice_%s.pdf", doc.Invoice.InvoiceNumber), nil
}
