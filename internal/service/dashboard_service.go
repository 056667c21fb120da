package service

import (
	"context"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"
)

// DashboardService aggregates the headline numbers shown on the home page.
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	contacts repository.ContactRepository
	products repository.ProductRepository
	invoices repository.InvoiceRepository
}

func NewDashboardService(contacts repository.ContactRepository, products repository.ProductRepository, invoices repository.InvoiceRepository) DashboardService {
	return &dashboardService{contacts: contacts, products: products, invoices: invoices}
}

func (s *dashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	contacts, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.Count(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.invoices.SumTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		Contacts:            contacts,
		ActiveProducts:      products,
		Invoices:            invoices,
		InvoiceTotal:        total,
		InvoiceTotalDisplay: FormatMoney(total),
	}, nil
}
