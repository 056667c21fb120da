package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AddressInput is an optional Bill-To or Ship-To override. Blank fields are
// filled from the contact (Bill-To) or from the resolved Bill-To (Ship-To).
type AddressInput struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// InvoiceLineInput is one submitted row. Quantity and UnitPrice accept a JSON
// number, a numeric string or nothing; anything unparseable counts as 0.
// A nil UnitPrice on a product-backed line means "use the product's price".
type InvoiceLineInput struct {
	ProductID     *string `json:"product_id"    validate:"omitempty,uuid"`
	Description   string  `json:"description"`
	Specification string  `json:"specification"`
	Package       string  `json:"package"`
	Form          string  `json:"form"`
	Quantity      any     `json:"quantity"`
	UnitPrice     any     `json:"unit_price"`
	// Discount marks a credit line; only then may UnitPrice be negative
	Discount bool `json:"discount"`
}

type CreateInvoiceRequest struct {
	ContactID            string             `json:"contact_id"             validate:"required,uuid"`
	IssueDate            string             `json:"issue_date"             validate:"omitempty,datetime=2006-01-02"`
	RequiredDeliveryDate string             `json:"required_delivery_date" validate:"omitempty,datetime=2006-01-02"`
	ShippingDate         string             `json:"shipping_date"          validate:"omitempty,datetime=2006-01-02"`
	DeliveryMode         string             `json:"delivery_mode"`
	TradeTerms           string             `json:"trade_terms"`
	PaymentTerms         string             `json:"payment_terms"`
	Currency             string             `json:"currency"               validate:"omitempty,max=8"`
	InternalShippingFee  any                `json:"internal_shipping_fee"`
	PreviousBalanceNote  string             `json:"previous_balance_note"`
	BillTo               *AddressInput      `json:"bill_to"`
	ShipTo               *AddressInput      `json:"ship_to"`
	UseContactAsShipTo   bool               `json:"use_contact_as_ship_to"`
	Lines                []InvoiceLineInput `json:"lines"                  validate:"dive"`
}

type EmailInvoiceRequest struct {
	To string `json:"to" validate:"required,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AddressView struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// InvoiceItemView carries both the exact stored values and their 2-decimal
// display strings.
type InvoiceItemView struct {
	LineNo           int             `json:"line_no"`
	ProductID        *string         `json:"product_id"`
	Description      string          `json:"description"`
	Specification    string          `json:"specification"`
	Package          string          `json:"package"`
	Form             string          `json:"form"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Amount           decimal.Decimal `json:"amount"`
	QuantityDisplay  string          `json:"quantity_display"`
	UnitPriceDisplay string          `json:"unit_price_display"`
	AmountDisplay    string          `json:"amount_display"`
}

type CompanyView struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	BankInfo []string `json:"bank_info"`
	LogoFile string   `json:"logo_file"`
}

// InvoiceView is the read model consumed by the print view and the PDF renderer.
type InvoiceView struct {
	ID                   string            `json:"id"`
	InvoiceNo            string            `json:"invoice_no"`
	ContactID            string            `json:"contact_id"`
	ContactName          string            `json:"contact_name"`
	IssueDate            string            `json:"issue_date"`
	RequiredDeliveryDate string            `json:"required_delivery_date"`
	ShippingDate         string            `json:"shipping_date"`
	DeliveryMode         string            `json:"delivery_mode"`
	TradeTerms           string            `json:"trade_terms"`
	PaymentTerms         string            `json:"payment_terms"`
	Currency             string            `json:"currency"`
	PreviousBalanceNote  string            `json:"previous_balance_note"`
	BillTo               AddressView       `json:"bill_to"`
	ShipTo               AddressView       `json:"ship_to"`
	Items                []InvoiceItemView `json:"items"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	InternalShippingFee  decimal.Decimal   `json:"internal_shipping_fee"`
	TotalAmount          decimal.Decimal   `json:"total_amount"`
	SubtotalDisplay      string            `json:"subtotal_display"`
	ShippingFeeDisplay   string            `json:"internal_shipping_fee_display"`
	TotalDisplay         string            `json:"total_amount_display"`
	Company              CompanyView       `json:"company"`
	CreatedAt            string            `json:"created_at"`
}

type InvoiceListItem struct {
	ID           string          `json:"id"`
	InvoiceNo    string          `json:"invoice_no"`
	ContactID    string          `json:"contact_id"`
	ContactName  string          `json:"contact_name"`
	IssueDate    string          `json:"issue_date"`
	Currency     string          `json:"currency"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalDisplay string          `json:"total_amount_display"`
	CreatedAt    string          `json:"created_at"`
}

type NextNumberResponse struct {
	InvoiceNo string `json:"invoice_no"`
	Date      string `json:"date"`
}
