package infra

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/zakareajob-cpu/zak-crm/internal/config"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMailer(t *testing.T) (*Mailer, *[]*email.Email) {
	t.Helper()
	cfg := &config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "bot@example.com", SMTPPassword: "pw"}
	m := NewMailer(cfg, NewCircuitBreaker(BreakerConfig{Name: "smtp", FailureThreshold: 1}))
	var sent []*email.Email
	m.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		assert.NotNil(t, auth)
		sent = append(sent, e)
		return nil
	}
	return m, &sent
}

func TestMailer_SendInvoiceAttachesPDF(t *testing.T) {
	m, sent := testMailer(t)

	require.NoError(t, m.SendInvoice("buyer@example.com", "Invoice A-001", "hello", "invoice_A-001.pdf", []byte("%PDF")))
	require.Len(t, *sent, 1)
	e := (*sent)[0]
	assert.Equal(t, "bot@example.com", e.From)
	assert.Equal(t, []string{"buyer@example.com"}, e.To)
	assert.Equal(t, "Invoice A-001", e.Subject)
	require.Len(t, e.Attachments, 1)
	assert.Equal(t, "invoice_A-001.pdf", e.Attachments[0].Filename)
	assert.Equal(t, []byte("%PDF"), e.Attachments[0].Content)
}

func TestMailer_OpenBreakerShortCircuits(t *testing.T) {
	m, sent := testMailer(t)
	m.send = func(*email.Email, string, smtp.Auth) error { return errors.New("dial tcp: refused") }

	assert.Error(t, m.SendInvoice("a@b.c", "s", "b", "x.pdf", nil))
	m.send = func(e *email.Email, _ string, _ smtp.Auth) error { *sent = append(*sent, e); return nil }
	assert.ErrorIs(t, m.SendInvoice("a@b.c", "s", "b", "x.pdf", nil), ErrCircuitOpen)
	assert.Empty(t, *sent)
}

func TestMailer_RequiresHost(t *testing.T) {
	m := NewMailer(&config.Config{}, NewCircuitBreaker(DefaultBreakerConfig("smtp")))
	assert.ErrorContains(t, m.SendInvoice("a@b.c", "s", "b", "x.pdf", nil), "SMTP_HOST")
}
