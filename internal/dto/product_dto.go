package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProductRequest struct {
	ShortName     string          `json:"short_name"    validate:"max=100"`
	FullName      string          `json:"full_name"     validate:"required,max=300"`
	Specification string          `json:"specification" validate:"max=300"`
	Package       string          `json:"package"       validate:"max=200"`
	Form          string          `json:"form"          validate:"max=200"`
	UnitPrice     decimal.Decimal `json:"unit_price"    validate:"min=0"`
	Currency      string          `json:"currency"      validate:"omitempty,max=8"`
	// Active defaults to true when omitted
	Active *bool `json:"active"`
}

type CustomerPriceRequest struct {
	SpecialPrice decimal.Decimal `json:"special_price" validate:"min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ProductSearchFilter is bound from GET /v1/products/search.
type ProductSearchFilter struct {
	Q          string `form:"q"`
	ActiveOnly *bool  `form:"active_only"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	ShortName     string          `json:"short_name"`
	FullName      string          `json:"full_name"`
	Specification string          `json:"specification"`
	Package       string          `json:"package"`
	Form          string          `json:"form"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	Active        bool            `json:"active"`
	CreatedAt     string          `json:"created_at"`
}

// ProductSearchItem is the autocomplete payload used when filling invoice lines.
type ProductSearchItem struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	ShortName     string          `json:"short_name"`
	FullName      string          `json:"full_name"`
	Specification string          `json:"specification"`
	Package       string          `json:"package"`
	Form          string          `json:"form"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
}

// PriceResponse answers GET /v1/products/:id/price.
// Source is "customer" when an override applied, "catalog" otherwise.
type PriceResponse struct {
	ProductID string          `json:"product_id"`
	ContactID *string         `json:"contact_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
	Source    string          `json:"source"`
}

type CustomerPriceResponse struct {
	ContactID    string          `json:"contact_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SpecialPrice decimal.Decimal `json:"special_price"`
	CatalogPrice decimal.Decimal `json:"catalog_price"`
	Currency     string          `json:"currency"`
}

// ImportResult summarizes a product import run.
type ImportResult struct {
	Inserted        int    `json:"inserted"`
	Skipped         int    `json:"skipped"`
	SkippedExisting bool   `json:"skipped_existing"`
	Sheet           string `json:"sheet,omitempty"` // worksheet read from an xlsx file
}
