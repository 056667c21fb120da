package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires the real repositories against a throwaway SQLite file.
type testEnv struct {
	db        *gorm.DB
	contacts  repository.ContactRepository
	products  repository.ProductRepository
	invoices  repository.InvoiceRepository
	composer  *Composer
	presenter *Presenter
	queue     *stubQueue
	svc       *invoiceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infra.NewDatabase(infra.DriverSQLite, filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	prev := infra.RetryBackoff
	infra.RetryBackoff = func(int) time.Duration { return 0 }
	t.Cleanup(func() { infra.RetryBackoff = prev })

	env := &testEnv{
		db:       db,
		contacts: repository.NewContactRepository(db),
		products: repository.NewProductRepository(db),
		invoices: repository.NewInvoiceRepository(db),
		queue:    &stubQueue{},
	}
	env.composer = NewComposer(env.contacts, env.products, ComposerConfig{
		Prefix:          "HOTGEN",
		Suffix:          "ZAK",
		DefaultCurrency: "USD",
	})
	env.composer.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }
	env.presenter = NewPresenter(dto.CompanyView{Name: "Zak Trading", BankInfo: []string{"IBAN 123"}})
	env.svc = NewInvoiceService(env.invoices, env.composer, repository.NewInvoiceNumberSource("scan"),
		env.presenter, env.queue, 3).(*invoiceService)
	return env
}

func (e *testEnv) contact(t *testing.T, c model.Contact) *model.Contact {
	t.Helper()
	if c.Status == "" {
		c.Status = model.StatusProspect
	}
	require.NoError(t, e.contacts.Create(context.Background(), &c))
	return &c
}

func (e *testEnv) product(t *testing.T, p model.Product) *model.Product {
	t.Helper()
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Active = true
	require.NoError(t, e.products.Create(context.Background(), &p))
	return &p
}

type stubQueue struct {
	calls []string
	err   error
}

func (q *stubQueue) EnqueueInvoiceEmail(_ context.Context, invoiceID uuid.UUID, to string) error {
	if q.err != nil {
		return q.err
	}
	q.calls = append(q.calls, invoiceID.String()+"|"+to)
	return nil
}

// stubNumbers hands out the queued sequences first, then scans. A non-zero
// always pins every call to that sequence.
type stubNumbers struct {
	fixed  []int
	always int
	calls  int
}

func (s *stubNumbers) Next(ctx context.Context, tx *gorm.DB, stem string) (int, error) {
	s.calls++
	if s.always > 0 {
		return s.always, nil
	}
	if len(s.fixed) > 0 {
		n := s.fixed[0]
		s.fixed = s.fixed[1:]
		return n, nil
	}
	return repository.NewInvoiceNumberSource("scan").Next(ctx, tx, stem)
}

func (s *stubNumbers) Peek(ctx context.Context, db *gorm.DB, stem string) (int, error) {
	return repository.NewInvoiceNumberSource("scan").Peek(ctx, db, stem)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
