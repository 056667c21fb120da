package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ContactRequest is used for both create and update; update overwrites every
// mutable field.
type ContactRequest struct {
	Name             string `json:"name"               validate:"required,max=200"`
	Company          string `json:"company"            validate:"max=200"`
	Country          string `json:"country"            validate:"max=100"`
	City             string `json:"city"               validate:"max=100"`
	Address          string `json:"address"            validate:"max=500"`
	Email            string `json:"email"              validate:"omitempty,email"`
	Phone            string `json:"phone"              validate:"max=50"`
	Whatsapp         string `json:"whatsapp"           validate:"max=50"`
	Status           string `json:"status"             validate:"omitempty,oneof=Prospect Active VIP Closed"`
	Source           string `json:"source"             validate:"max=100"`
	NextFollowupDate string `json:"next_followup_date" validate:"max=20"`
	LastContactDate  string `json:"last_contact_date"  validate:"max=20"`
	Notes            string `json:"notes"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ContactFilter is bound from the query string of GET /v1/contacts.
// Q matches name, company, country or email, case-insensitively.
type ContactFilter struct {
	Q string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContactResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Company          string `json:"company"`
	Country          string `json:"country"`
	City             string `json:"city"`
	Address          string `json:"address"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Whatsapp         string `json:"whatsapp"`
	Status           string `json:"status"`
	Source           string `json:"source"`
	NextFollowupDate string `json:"next_followup_date"`
	LastContactDate  string `json:"last_contact_date"`
	Notes            string `json:"notes"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}
