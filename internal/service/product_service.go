package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	searchPageSize    = 30
	searchCacheTTL    = 10 * time.Minute
	searchCachePrefix = "products:search:"

	PriceSourceCustomer = "customer"
	PriceSourceCatalog  = "catalog"
)

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Search returns at most one page of autocomplete items. ActiveOnly
	// defaults to true.
	Search(ctx context.Context, filter dto.ProductSearchFilter) ([]dto.ProductSearchItem, error)
	// PriceFor returns the customer override when contactID is set and one
	// exists, the catalog price otherwise.
	PriceFor(ctx context.Context, contactID *uuid.UUID, productID uuid.UUID) (*dto.PriceResponse, error)

	SetCustomerPrice(ctx context.Context, contactID, productID uuid.UUID, req dto.CustomerPriceRequest) (*dto.CustomerPriceResponse, error)
	ListCustomerPrices(ctx context.Context, contactID uuid.UUID) ([]dto.CustomerPriceResponse, error)
	DeleteCustomerPrice(ctx context.Context, contactID, productID uuid.UUID) error
}

type productService struct {
	repo            repository.ProductRepository
	contacts        repository.ContactRepository
	rdb             *redis.Client // nil disables the search cache
	defaultCurrency string
}

func NewProductService(repo repository.ProductRepository, contacts repository.ContactRepository, rdb *redis.Client, defaultCurrency string) ProductService {
	return &productService{repo: repo, contacts: contacts, rdb: rdb, defaultCurrency: defaultCurrency}
}

func (s *productService) Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{}
	if err := s.applyProductRequest(p, req, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = *productToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	if err := s.applyProductRequest(p, req, false); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateSearch(ctx)
	return productToResponse(p), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound("product", err)
	}
	s.invalidateSearch(ctx)
	return nil
}

func (s *productService) Search(ctx context.Context, filter dto.ProductSearchFilter) ([]dto.ProductSearchItem, error) {
	activeOnly := filter.ActiveOnly == nil || *filter.ActiveOnly
	query := strings.ToLower(strings.TrimSpace(filter.Q))
	key := fmt.Sprintf("%s%t:%s", searchCachePrefix, activeOnly, query)

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []dto.ProductSearchItem
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("product search cache read failed")
		}
	}

	products, err := s.repo.Search(ctx, query, activeOnly, searchPageSize)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductSearchItem, len(products))
	for i := range products {
		items[i] = productToSearchItem(&products[i])
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.rdb.Set(ctx, key, raw, searchCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("product search cache write failed")
			}
		}
	}
	return items, nil
}

func (s *productService) PriceFor(ctx context.Context, contactID *uuid.UUID, productID uuid.UUID) (*dto.PriceResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound("product", err)
	}
	price, source, err := priceFor(ctx, s.repo, contactID, p)
	if err != nil {
		return nil, err
	}
	resp := &dto.PriceResponse{
		ProductID: p.ID.String(),
		UnitPrice: price,
		Currency:  p.Currency,
		Source:    source,
	}
	if contactID != nil {
		cid := contactID.String()
		resp.ContactID = &cid
	}
	return resp, nil
}

func (s *productService) SetCustomerPrice(ctx context.Context, contactID, productID uuid.UUID, req dto.CustomerPriceRequest) (*dto.CustomerPriceResponse, error) {
	if req.SpecialPrice.IsNegative() {
		return nil, invalid("special_price", "must not be negative")
	}
	if _, err := s.contacts.FindByID(ctx, contactID); err != nil {
		return nil, notFound("contact", err)
	}
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound("product", err)
	}
	cp := &model.CustomerPrice{ContactID: contactID, ProductID: productID, SpecialPrice: req.SpecialPrice}
	if err := s.repo.UpsertCustomerPrice(ctx, cp); err != nil {
		return nil, err
	}
	cp.Product = p
	return customerPriceToResponse(cp), nil
}

func (s *productService) ListCustomerPrices(ctx context.Context, contactID uuid.UUID) ([]dto.CustomerPriceResponse, error) {
	if _, err := s.contacts.FindByID(ctx, contactID); err != nil {
		return nil, notFound("contact", err)
	}
	prices, err := s.repo.ListCustomerPrices(ctx, contactID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CustomerPriceResponse, len(prices))
	for i := range prices {
		resp[i] = *customerPriceToResponse(&prices[i])
	}
	return resp, nil
}

func (s *productService) DeleteCustomerPrice(ctx context.Context, contactID, productID uuid.UUID) error {
	removed, err := s.repo.DeleteCustomerPrice(ctx, contactID, productID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("customer price: %w", ErrNotFound)
	}
	return nil
}

// invalidateSearch drops every cached search page. Failures only cost
// freshness until the TTL expires.
func (s *productService) invalidateSearch(ctx context.Context) {
	if s.rdb != nil {
		invalidateSearchCache(ctx, s.rdb)
	}
}

func invalidateSearchCache(ctx context.Context, rdb *redis.Client) {
	var keys []string
	iter := rdb.Scan(ctx, 0, searchCachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("product search cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("product search cache invalidation failed")
	}
}

// priceFor resolves the unit price of p for an optional contact.
func priceFor(ctx context.Context, repo repository.ProductRepository, contactID *uuid.UUID, p *model.Product) (decimal.Decimal, string, error) {
	if contactID != nil {
		cp, err := repo.FindCustomerPrice(ctx, *contactID, p.ID)
		switch {
		case err == nil:
			return cp.SpecialPrice, PriceSourceCustomer, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return decimal.Zero, "", err
		}
	}
	return p.UnitPrice, PriceSourceCatalog, nil
}

func (s *productService) applyProductRequest(p *model.Product, req dto.ProductRequest, creating bool) error {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return invalid("full_name", "required")
	}
	if req.UnitPrice.IsNegative() {
		return invalid("unit_price", "must not be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	p.ShortName = strings.TrimSpace(req.ShortName)
	p.FullName = fullName
	p.Specification = strings.TrimSpace(req.Specification)
	p.Package = strings.TrimSpace(req.Package)
	p.Form = strings.TrimSpace(req.Form)
	p.UnitPrice = req.UnitPrice
	p.Currency = currency
	switch {
	case req.Active != nil:
		p.Active = *req.Active
	case creating:
		p.Active = true
	}
	return nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		ShortName:     p.ShortName,
		FullName:      p.FullName,
		Specification: p.Specification,
		Package:       p.Package,
		Form:          p.Form,
		UnitPrice:     p.UnitPrice,
		Currency:      p.Currency,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

// productLabel is the autocomplete text: "SHORT - Full name", or whichever
// of the two is set.
func productLabel(p *model.Product) string {
	switch {
	case p.ShortName != "" && p.FullName != "":
		return p.ShortName + " - " + p.FullName
	case p.ShortName != "":
		return p.ShortName
	default:
		return p.FullName
	}
}

func productToSearchItem(p *model.Product) dto.ProductSearchItem {
	return dto.ProductSearchItem{
		ID:            p.ID.String(),
		Label:         productLabel(p),
		ShortName:     p.ShortName,
		FullName:      p.FullName,
		Specification: p.Specification,
		Package:       p.Package,
		Form:          p.Form,
		UnitPrice:     p.UnitPrice,
		Currency:      p.Currency,
	}
}

func customerPriceToResponse(cp *model.CustomerPrice) *dto.CustomerPriceResponse {
	resp := &dto.CustomerPriceResponse{
		ContactID:    cp.ContactID.String(),
		ProductID:    cp.ProductID.String(),
		SpecialPrice: cp.SpecialPrice,
	}
	if cp.Product != nil {
		resp.ProductName = cp.Product.FullName
		resp.CatalogPrice = cp.Product.UnitPrice
		resp.Currency = cp.Product.Currency
	}
	return resp
}
