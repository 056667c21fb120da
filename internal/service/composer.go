package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ComposerConfig is the invoicing part of the process configuration.
type ComposerConfig struct {
	Prefix             string
	Suffix             string
	DefaultCurrency    string
	AllowDiscountLines bool
}

// InvoiceDraft is a fully computed invoice that has not been numbered yet.
// Stem is the number without its sequence; the store assigns the sequence
// inside the save transaction.
type InvoiceDraft struct {
	Invoice *model.Invoice
	Stem    string
}

// Composer validates a create request and computes lines, totals and
// address snapshots. It only reads from storage.
type Composer struct {
	contacts repository.ContactRepository
	products repository.ProductRepository
	cfg      ComposerConfig
	now      func() time.Time
}

func NewComposer(contacts repository.ContactRepository, products repository.ProductRepository, cfg ComposerConfig) *Composer {
	return &Composer{contacts: contacts, products: products, cfg: cfg, now: time.Now}
}

// CompositionDate is the day the invoice number is stamped with: the issue
// date when one is given, today otherwise.
func (c *Composer) CompositionDate(issueDate string) (time.Time, error) {
	issueDate = strings.TrimSpace(issueDate)
	if issueDate == "" {
		return c.now(), nil
	}
	day, err := time.Parse(dateLayout, issueDate)
	if err != nil {
		return time.Time{}, invalid("issue_date", "must be YYYY-MM-DD")
	}
	return day, nil
}

// Stem returns the invoice number stem for day.
func (c *Composer) Stem(day time.Time) string {
	return repository.InvoiceStem(c.cfg.Prefix, c.cfg.Suffix, day)
}

func (c *Composer) Compose(ctx context.Context, req dto.CreateInvoiceRequest) (*InvoiceDraft, error) {
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return nil, invalid("contact_id", "must be a uuid")
	}
	contact, err := c.contacts.FindByID(ctx, contactID)
	if err != nil {
		return nil, notFound("contact", err)
	}

	day, err := c.CompositionDate(req.IssueDate)
	if err != nil {
		return nil, err
	}

	fee := ParseLenientDecimal(req.InternalShippingFee)
	if fee.IsNegative() {
		return nil, invalid("internal_shipping_fee", "must not be negative")
	}

	items, err := c.buildItems(ctx, contactID, req.Lines)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = c.cfg.DefaultCurrency
	}

	bill := ResolveBillTo(derefAddress(addressFromInput(req.BillTo)), contact)
	ship := ResolveShipTo(addressFromInput(req.ShipTo), bill, req.UseContactAsShipTo)

	inv := &model.Invoice{
		ContactID:            contactID,
		IssueDate:            day.Format(dateLayout),
		RequiredDeliveryDate: strings.TrimSpace(req.RequiredDeliveryDate),
		ShippingDate:         strings.TrimSpace(req.ShippingDate),
		DeliveryMode:         strings.TrimSpace(req.DeliveryMode),
		TradeTerms:           strings.TrimSpace(req.TradeTerms),
		PaymentTerms:         strings.TrimSpace(req.PaymentTerms),
		Currency:             currency,
		InternalShippingFee:  fee,
		TotalAmount:          InvoiceTotal(items, fee),
		PreviousBalanceNote:  strings.TrimSpace(req.PreviousBalanceNote),
		Bill:                 bill,
		Ship:                 ship,
		Contact:              contact,
		Items:                items,
	}
	return &InvoiceDraft{Invoice: inv, Stem: c.Stem(day)}, nil
}

// buildItems backfills product-backed lines, drops lines that still have no
// description and numbers the survivors from 1.
func (c *Composer) buildItems(ctx context.Context, contactID uuid.UUID, lines []dto.InvoiceLineInput) ([]model.InvoiceItem, error) {
	fields := map[string]string{}
	items := make([]model.InvoiceItem, 0, len(lines))

	for i, in := range lines {
		key := fmt.Sprintf("lines[%d]", i)
		item := model.InvoiceItem{
			Description:   strings.TrimSpace(in.Description),
			Specification: strings.TrimSpace(in.Specification),
			Package:       strings.TrimSpace(in.Package),
			Form:          strings.TrimSpace(in.Form),
			Quantity:      ParseLenientDecimal(in.Quantity),
			UnitPrice:     ParseLenientDecimal(in.UnitPrice),
		}

		if in.ProductID != nil && strings.TrimSpace(*in.ProductID) != "" {
			productID, err := uuid.Parse(strings.TrimSpace(*in.ProductID))
			if err != nil {
				fields[key+".product_id"] = "must be a uuid"
				continue
			}
			p, err := c.products.FindByID(ctx, productID)
			if err != nil {
				return nil, notFound("product", err)
			}
			item.ProductID = &p.ID
			item.Description = firstNonEmpty(item.Description, p.FullName, p.ShortName)
			item.Specification = firstNonEmpty(item.Specification, p.Specification)
			item.Package = firstNonEmpty(item.Package, p.Package)
			item.Form = firstNonEmpty(item.Form, p.Form)
			if isBlankInput(in.UnitPrice) {
				price, _, err := priceFor(ctx, c.products, &contactID, p)
				if err != nil {
					return nil, err
				}
				item.UnitPrice = price
			}
		}

		if item.Description == "" {
			continue
		}
		if msg := c.checkLine(item, in.Discount); msg != nil {
			for f, m := range msg {
				fields[key+"."+f] = m
			}
			continue
		}

		item.LineNo = len(items) + 1
		item.Amount = item.Quantity.Mul(item.UnitPrice)
		items = append(items, item)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if len(items) == 0 {
		return nil, invalid("lines", "at least one line with a description is required")
	}
	return items, nil
}

func (c *Composer) checkLine(item model.InvoiceItem, discount bool) map[string]string {
	msg := map[string]string{}
	if item.Quantity.IsNegative() {
		msg["quantity"] = "must not be negative"
	}
	if item.UnitPrice.IsNegative() && !(discount && c.cfg.AllowDiscountLines) {
		msg["unit_price"] = "must not be negative unless the line is a discount"
	}
	if len(msg) == 0 {
		return nil
	}
	return msg
}

// InvoiceTotal is the sum of item amounts plus the shipping fee, unrounded.
func InvoiceTotal(items []model.InvoiceItem, fee decimal.Decimal) decimal.Decimal {
	total := fee
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

func derefAddress(a *model.Address) model.Address {
	if a == nil {
		return model.Address{}
	}
	return *a
}
