package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EmailQueue accepts invoice e-mail jobs for asynchronous delivery.
type EmailQueue interface {
	EnqueueInvoiceEmail(ctx context.Context, invoiceID uuid.UUID, to string) error
}

// InvoiceService composes, stores and presents invoices.
type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceView, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceView, error)
	List(ctx context.Context) ([]dto.InvoiceListItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber previews the number the next invoice for date would get.
	// Nothing is reserved.
	NextNumber(ctx context.Context, date string) (*dto.NextNumberResponse, error)
	PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	// Email queues the invoice PDF for delivery to req.To.
	Email(ctx context.Context, id uuid.UUID, req dto.EmailInvoiceRequest) error
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	composer  *Composer
	numbers   repository.InvoiceNumberSource
	presenter *Presenter
	queue     EmailQueue // nil when Redis is not configured
	retries   int
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	composer *Composer,
	numbers repository.InvoiceNumberSource,
	presenter *Presenter,
	queue EmailQueue,
	retries int,
) InvoiceService {
	if retries < 0 {
		retries = 0
	}
	return &invoiceService{
		repo:      repo,
		composer:  composer,
		numbers:   numbers,
		presenter: presenter,
		queue:     queue,
		retries:   retries,
	}
}

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceView, error) {
	draft, err := s.composer.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}

	inv := draft.Invoice
	log.Info().
		Str("invoice_no", inv.InvoiceNo).
		Str("total", inv.TotalAmount.String()).
		Int("items", len(inv.Items)).
		Msg("invoice created")
	return s.presenter.Render(inv), nil
}

// save numbers the draft and writes header and items in one transaction.
// A unique violation on invoice_no means another request took the number
// first; the whole transaction is retried with a freshly derived number.
func (s *invoiceService) save(ctx context.Context, draft *InvoiceDraft) error {
	inv := draft.Invoice
	err := infra.WithRetries(ctx, func(attempt int) error {
		if attempt > 0 {
			log.Warn().Str("stem", draft.Stem).Int("attempt", attempt).Msg("invoice number conflict, retrying")
		}
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			seq, err := s.numbers.Next(ctx, tx, draft.Stem)
			if err != nil {
				return fmt.Errorf("reserve invoice number: %w", err)
			}
			inv.InvoiceNo = repository.FormatInvoiceNo(draft.Stem, seq)
			return s.repo.Create(ctx, tx, inv)
		})
	}, s.retries, repository.IsDuplicateKey)

	if err != nil {
		inv.InvoiceNo = ""
		if repository.IsDuplicateKey(err) {
			return ErrInvoiceNumberRace
		}
		return err
	}
	return nil
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceView, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("invoice", err)
	}
	return s.presenter.Render(inv), nil
}

func (s *invoiceService) List(ctx context.Context) ([]dto.InvoiceListItem, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.InvoiceListItem, len(invoices))
	for i := range invoices {
		resp[i] = invoiceToListItem(&invoices[i])
	}
	return resp, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound("invoice", s.repo.Delete(ctx, id))
}

func (s *invoiceService) NextNumber(ctx context.Context, date string) (*dto.NextNumberResponse, error) {
	day, err := s.composer.CompositionDate(date)
	if err != nil {
		return nil, err
	}
	stem := s.composer.Stem(day)
	seq, err := s.numbers.Peek(ctx, s.repo.DB(), stem)
	if err != nil {
		return nil, err
	}
	return &dto.NextNumberResponse{
		InvoiceNo: repository.FormatInvoiceNo(stem, seq),
		Date:      day.Format(dateLayout),
	}, nil
}

func (s *invoiceService) PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := infra.RenderInvoicePDF(view)
	if err != nil {
		return nil, "", err
	}
	return data, infra.InvoicePDFName(view.InvoiceNo), nil
}

func (s *invoiceService) Email(ctx context.Context, id uuid.UUID, req dto.EmailInvoiceRequest) error {
	to := strings.TrimSpace(req.To)
	if to == "" {
		return invalid("to", "required")
	}
	if s.queue == nil {
		return fmt.Errorf("e-mail queue is not configured: %w", ErrUnavailable)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound("invoice", err)
	}
	if err := s.queue.EnqueueInvoiceEmail(ctx, id, to); err != nil {
		return fmt.Errorf("enqueue invoice e-mail: %w", err)
	}
	log.Info().Str("invoice_id", id.String()).Str("to", to).Msg("invoice e-mail queued")
	return nil
}
