package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the body of a JobInvoiceEmail job.
type EmailJobPayload struct {
	InvoiceID string `json:"invoice_id"`
	To        string `json:"to"`
}

// InvoiceReader loads the presented invoice to attach.
type InvoiceReader interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceView, error)
}

// Sender delivers one message with a PDF attachment.
type Sender interface {
	SendInvoice(to, subject, body, attachmentName string, pdf []byte) error
}

// EmailWorker renders the invoice PDF, archives it when a store is set and
// mails it.
type EmailWorker struct {
	invoices InvoiceReader
	store    infra.PDFStore
	sender   Sender
	render   func(*dto.InvoiceView) ([]byte, error)
}

func NewEmailWorker(invoices InvoiceReader, store infra.PDFStore, sender Sender) *EmailWorker {
	return &EmailWorker{invoices: invoices, store: store, sender: sender, render: infra.RenderInvoicePDF}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %v: %w", err, ErrPermanent)
	}
	to := strings.TrimSpace(payload.To)
	if to == "" {
		return fmt.Errorf("email_worker: empty recipient: %w", ErrPermanent)
	}
	id, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("email_worker: invoice id %q: %w", payload.InvoiceID, ErrPermanent)
	}

	view, err := w.invoices.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("email_worker: load invoice %s: %w", id, err)
	}
	pdf, err := w.render(view)
	if err != nil {
		return fmt.Errorf("email_worker: render %s: %w", view.InvoiceNo, err)
	}
	name := infra.InvoicePDFName(view.InvoiceNo)

	if w.store != nil {
		loc, err := w.store.Save(ctx, name, pdf)
		if err != nil {
			// archiving is best effort; the customer still gets the mail
			log.Warn().Err(err).Str("invoice_no", view.InvoiceNo).Msg("email_worker: archive failed")
		} else {
			log.Debug().Str("invoice_no", view.InvoiceNo).Str("location", loc).Msg("email_worker: pdf archived")
		}
	}

	if err := w.sender.SendInvoice(to, emailSubject(view), emailBody(view), name, pdf); err != nil {
		return fmt.Errorf("email_worker: send %s to %s: %w", view.InvoiceNo, to, err)
	}
	log.Info().Str("invoice_no", view.InvoiceNo).Str("to", to).Msg("email_worker: invoice sent")
	return nil
}

func emailSubject(v *dto.InvoiceView) string {
	if v.Company.Name != "" {
		return fmt.Sprintf("Invoice %s from %s", v.InvoiceNo, v.Company.Name)
	}
	return "Invoice " + v.InvoiceNo
}

func emailBody(v *dto.InvoiceView) string {
	var b strings.Builder
	name := v.BillTo.Name
	if name == "" {
		name = v.ContactName
	}
	if name != "" {
		fmt.Fprintf(&b, "Dear %s,\n\n", name)
	}
	fmt.Fprintf(&b, "Please find attached invoice %s dated %s.\n", v.InvoiceNo, v.IssueDate)
	fmt.Fprintf(&b, "Total amount: %s %s\n", v.Currency, v.TotalDisplay)
	if v.PaymentTerms != "" {
		fmt.Fprintf(&b, "Payment terms: %s\n", v.PaymentTerms)
	}
	if len(v.Company.BankInfo) > 0 {
		b.WriteString("\nBank details:\n")
		for _, l := range v.Company.BankInfo {
			b.WriteString(l + "\n")
		}
	}
	return b.String()
}
