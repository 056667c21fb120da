package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactService defines the business logic contract for the contact directory.
type ContactService interface {
	Create(ctx context.Context, req dto.ContactRequest) (*dto.ContactResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error)
	List(ctx context.Context, filter dto.ContactFilter) ([]dto.ContactResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ContactRequest) (*dto.ContactResponse, error)
	// Delete refuses to remove a contact that still owns invoices.
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	repo     repository.ContactRepository
	invoices repository.InvoiceRepository
}

func NewContactService(repo repository.ContactRepository, invoices repository.InvoiceRepository) ContactService {
	return &contactService{repo: repo, invoices: invoices}
}

func (s *contactService) Create(ctx context.Context, req dto.ContactRequest) (*dto.ContactResponse, error) {
	c := &model.Contact{}
	if err := applyContactRequest(c, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return contactToResponse(c), nil
}

func (s *contactService) Get(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("contact", err)
	}
	return contactToResponse(c), nil
}

func (s *contactService) List(ctx context.Context, filter dto.ContactFilter) ([]dto.ContactResponse, error) {
	contacts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ContactResponse, len(contacts))
	for i := range contacts {
		resp[i] = *contactToResponse(&contacts[i])
	}
	return resp, nil
}

func (s *contactService) Update(ctx context.Context, id uuid.UUID, req dto.ContactRequest) (*dto.ContactResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("contact", err)
	}
	if err := applyContactRequest(c, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return contactToResponse(c), nil
}

func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.invoices.CountByContact(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrContactHasInvoices
	}
	err = s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		// an invoice was created between the count and the delete
		return ErrContactHasInvoices
	}
	return notFound("contact", err)
}

func applyContactRequest(c *model.Contact, req dto.ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("name", "required")
	}
	status := model.ContactStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.StatusProspect
	}
	if !status.Valid() {
		return invalid("status", "must be one of Prospect, Active, VIP, Closed")
	}

	c.Name = name
	c.Company = strings.TrimSpace(req.Company)
	c.Country = strings.TrimSpace(req.Country)
	c.City = strings.TrimSpace(req.City)
	c.Address = strings.TrimSpace(req.Address)
	c.Email = strings.TrimSpace(req.Email)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Whatsapp = strings.TrimSpace(req.Whatsapp)
	c.Status = status
	c.Source = strings.TrimSpace(req.Source)
	c.NextFollowupDate = strings.TrimSpace(req.NextFollowupDate)
	c.LastContactDate = strings.TrimSpace(req.LastContactDate)
	c.Notes = req.Notes
	return nil
}

func contactToResponse(c *model.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:               c.ID.String(),
		Name:             c.Name,
		Company:          c.Company,
		Country:          c.Country,
		City:             c.City,
		Address:          c.Address,
		Email:            c.Email,
		Phone:            c.Phone,
		Whatsapp:         c.Whatsapp,
		Status:           string(c.Status),
		Source:           c.Source,
		NextFollowupDate: c.NextFollowupDate,
		LastContactDate:  c.LastContactDate,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.Format(time.RFC3339),
	}
}
