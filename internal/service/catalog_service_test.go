package service

import (
	"context"
	"testing"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestContactService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	svc := NewContactService(env.contacts, env.invoices)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.ContactRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, dto.ContactRequest{Name: "X", Status: "Lost"})
	assert.ErrorIs(t, err, ErrValidation)

	created, err := svc.Create(ctx, dto.ContactRequest{Name: " Maria ", Company: "Maria SA", Country: "Chile"})
	require.NoError(t, err)
	assert.Equal(t, "Maria", created.Name)
	assert.Equal(t, "Prospect", created.Status)

	id := uuid.MustParse(created.ID)
	updated, err := svc.Update(ctx, id, dto.ContactRequest{Name: "Maria", Status: "VIP", Country: "Chile"})
	require.NoError(t, err)
	assert.Equal(t, "VIP", updated.Status)
	assert.Empty(t, updated.Company, "update overwrites every field")

	list, err := svc.List(ctx, dto.ContactFilter{Q: "chile"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Update(ctx, uuid.New(), dto.ContactRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrNotFound)
}

func TestContactService_DeleteRestrictedByInvoices(t *testing.T) {
	env := newTestEnv(t)
	svc := NewContactService(env.contacts, env.invoices)
	ctx := context.Background()
	c := env.contact(t, model.Contact{Name: "Owner"})

	_, err := env.svc.Create(ctx, dto.CreateInvoiceRequest{
		ContactID: c.ID.String(),
		Lines:     []dto.InvoiceLineInput{{Description: "Item", Quantity: 1.0, UnitPrice: 1.0}},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, ErrContactHasInvoices)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Get(ctx, c.ID)
	assert.NoError(t, err, "contact must survive")
}

func TestProductService_CreateDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.products, env.contacts, nil, "EUR")
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.ProductRequest{FullName: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, dto.ProductRequest{FullName: "Neg", UnitPrice: dec("-1")})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.Create(ctx, dto.ProductRequest{FullName: "Zinc Oxide", UnitPrice: dec("3.20")})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.True(t, p.Active)

	id := uuid.MustParse(p.ID)
	p, err = svc.Update(ctx, id, dto.ProductRequest{FullName: "Zinc Oxide", UnitPrice: dec("3.20"), Active: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, p.Active)

	// leaving Active out on update keeps the stored value
	p, err = svc.Update(ctx, id, dto.ProductRequest{FullName: "Zinc Oxide 99%", UnitPrice: dec("3.50")})
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.Equal(t, "Zinc Oxide 99%", p.FullName)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrNotFound)
}

func TestProductService_SearchHidesInactiveByDefault(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.products, env.contacts, nil, "USD")
	ctx := context.Background()

	env.product(t, model.Product{ShortName: "MG", FullName: "Magnesium Citrate", UnitPrice: dec("4")})
	inactive := env.product(t, model.Product{FullName: "Magnesium Oxide", UnitPrice: dec("2")})
	inactive.Active = false
	require.NoError(t, env.products.Update(ctx, inactive))

	items, err := svc.Search(ctx, dto.ProductSearchFilter{Q: "magnesium"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "MG - Magnesium Citrate", items[0].Label)
	assert.Equal(t, "USD", items[0].Currency)

	items, err = svc.Search(ctx, dto.ProductSearchFilter{Q: "magnesium", ActiveOnly: boolPtr(false)})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Magnesium Oxide", items[1].Label)
}

func TestProductService_PriceForAndCustomerPrices(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.products, env.contacts, nil, "USD")
	ctx := context.Background()
	c := env.contact(t, model.Contact{Name: "Buyer"})
	p := env.product(t, model.Product{FullName: "Lysine", UnitPrice: dec("8")})

	price, err := svc.PriceFor(ctx, &c.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, PriceSourceCatalog, price.Source)
	assert.True(t, price.UnitPrice.Equal(dec("8")))

	_, err = svc.SetCustomerPrice(ctx, c.ID, p.ID, dto.CustomerPriceRequest{SpecialPrice: dec("-1")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetCustomerPrice(ctx, uuid.New(), p.ID, dto.CustomerPriceRequest{SpecialPrice: dec("7")})
	assert.ErrorIs(t, err, ErrNotFound)

	cp, err := svc.SetCustomerPrice(ctx, c.ID, p.ID, dto.CustomerPriceRequest{SpecialPrice: dec("7")})
	require.NoError(t, err)
	assert.Equal(t, "Lysine", cp.ProductName)
	assert.True(t, cp.CatalogPrice.Equal(dec("8")))

	price, err = svc.PriceFor(ctx, &c.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, PriceSourceCustomer, price.Source)
	assert.True(t, price.UnitPrice.Equal(dec("7")))

	price, err = svc.PriceFor(ctx, nil, p.ID)
	require.NoError(t, err)
	assert.Equal(t, PriceSourceCatalog, price.Source)
	assert.Nil(t, price.ContactID)

	_, err = svc.PriceFor(ctx, &c.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	prices, err := svc.ListCustomerPrices(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, prices, 1)

	require.NoError(t, svc.DeleteCustomerPrice(ctx, c.ID, p.ID))
	assert.ErrorIs(t, svc.DeleteCustomerPrice(ctx, c.ID, p.ID), ErrNotFound)
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.contact(t, model.Contact{Name: "Acme"})
	env.product(t, model.Product{FullName: "Thing", UnitPrice: dec("1")})

	_, err := env.svc.Create(ctx, dto.CreateInvoiceRequest{
		ContactID: c.ID.String(),
		Lines:     []dto.InvoiceLineInput{{Description: "Item", Quantity: 1000.0, UnitPrice: 1.5}},
	})
	require.NoError(t, err)

	summary, err := NewDashboardService(env.contacts, env.products, env.invoices).Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Contacts)
	assert.EqualValues(t, 1, summary.ActiveProducts)
	assert.EqualValues(t, 1, summary.Invoices)
	assert.Equal(t, "1,500.00", summary.InvoiceTotalDisplay)
}
