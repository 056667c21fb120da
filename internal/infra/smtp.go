package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/zakareajob-cpu/zak-crm/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending invoices as PDF attachments.
// Every send goes through the circuit breaker.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	from := cfg.CompanyEmail
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       cb,
		send:     func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// SendInvoice mails pdf to a single recipient.
func (m *Mailer) SendInvoice(to, subject, body, attachmentName string, pdf []byte) error {
	if m.host == "" {
		return fmt.Errorf("mailer: SMTP_HOST is not configured")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if _, err := e.Attach(bytes.NewReader(pdf), attachmentName, "application/pdf"); err != nil {
		return fmt.Errorf("mailer: attach PDF: %w", err)
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Execute(func() error {
		return m.send(e, m.addr, auth)
	})
}
