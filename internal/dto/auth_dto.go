package dto

import "github.com/shopspring/decimal"

// ─── Auth ────────────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UserResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

type DashboardResponse struct {
	Contacts            int64           `json:"contacts"`
	ActiveProducts      int64           `json:"active_products"`
	Invoices            int64           `json:"invoices"`
	InvoiceTotal        decimal.Decimal `json:"invoice_total"`
	InvoiceTotalDisplay string          `json:"invoice_total_display"`
}
