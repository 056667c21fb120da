package service

import (
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"

	"github.com/shopspring/decimal"
)

// Presenter turns a stored invoice into its read model. It never writes.
type Presenter struct {
	company dto.CompanyView
}

func NewPresenter(company dto.CompanyView) *Presenter {
	return &Presenter{company: company}
}

// Render builds the view of inv. inv.Contact is only consulted for invoices
// stored before address snapshots existed, whose bill columns are all blank.
// A snapshotted invoice is printed as stored, blanks included.
func (p *Presenter) Render(inv *model.Invoice) *dto.InvoiceView {
	bill := inv.Bill
	if bill.IsZero() && inv.Contact != nil {
		bill = ContactAddress(inv.Contact)
	}
	ship := inv.Ship
	if ship.IsZero() {
		ship = bill
	}

	items := make([]dto.InvoiceItemView, len(inv.Items))
	subtotal := InvoiceTotal(inv.Items, decimal.Zero)
	for i, it := range inv.Items {
		var productID *string
		if it.ProductID != nil {
			s := it.ProductID.String()
			productID = &s
		}
		items[i] = dto.InvoiceItemView{
			LineNo:           it.LineNo,
			ProductID:        productID,
			Description:      it.Description,
			Specification:    it.Specification,
			Package:          it.Package,
			Form:             it.Form,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			Amount:           it.Amount,
			QuantityDisplay:  FormatQuantity(it.Quantity),
			UnitPriceDisplay: FormatMoney(it.UnitPrice),
			AmountDisplay:    FormatMoney(it.Amount),
		}
	}

	contactName := ""
	if inv.Contact != nil {
		contactName = inv.Contact.Name
	}

	company := p.company
	company.BankInfo = append([]string(nil), p.company.BankInfo...)

	return &dto.InvoiceView{
		ID:                   inv.ID.String(),
		InvoiceNo:            inv.InvoiceNo,
		ContactID:            inv.ContactID.String(),
		ContactName:          contactName,
		IssueDate:            inv.IssueDate,
		RequiredDeliveryDate: inv.RequiredDeliveryDate,
		ShippingDate:         inv.ShippingDate,
		DeliveryMode:         inv.DeliveryMode,
		TradeTerms:           inv.TradeTerms,
		PaymentTerms:         inv.PaymentTerms,
		Currency:             inv.Currency,
		PreviousBalanceNote:  inv.PreviousBalanceNote,
		BillTo:               addressToView(bill),
		ShipTo:               addressToView(ship),
		Items:                items,
		Subtotal:             subtotal,
		InternalShippingFee:  inv.InternalShippingFee,
		TotalAmount:          inv.TotalAmount,
		SubtotalDisplay:      FormatMoney(subtotal),
		ShippingFeeDisplay:   FormatMoney(inv.InternalShippingFee),
		TotalDisplay:         FormatMoney(inv.TotalAmount),
		Company:              company,
		CreatedAt:            inv.CreatedAt.Format(time.RFC3339),
	}
}

func invoiceToListItem(inv *model.Invoice) dto.InvoiceListItem {
	name := inv.Bill.Name
	if inv.Contact != nil {
		name = inv.Contact.Name
	}
	return dto.InvoiceListItem{
		ID:           inv.ID.String(),
		InvoiceNo:    inv.InvoiceNo,
		ContactID:    inv.ContactID.String(),
		ContactName:  name,
		IssueDate:    inv.IssueDate,
		Currency:     inv.Currency,
		TotalAmount:  inv.TotalAmount,
		TotalDisplay: FormatMoney(inv.TotalAmount),
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
	}
}
