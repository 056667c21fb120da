package service

import (
	"strings"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
)

// ContactAddress is the address block a contact contributes to an invoice.
// Phone and WhatsApp are joined with a space when both are present.
func ContactAddress(c *model.Contact) model.Address {
	if c == nil {
		return model.Address{}
	}
	return model.Address{
		Name:    strings.TrimSpace(c.Name),
		Company: strings.TrimSpace(c.Company),
		Address: strings.TrimSpace(c.Address),
		City:    strings.TrimSpace(c.City),
		Country: strings.TrimSpace(c.Country),
		Phone:   strings.TrimSpace(strings.TrimSpace(c.Phone) + " " + strings.TrimSpace(c.Whatsapp)),
		Email:   strings.TrimSpace(c.Email),
	}
}

// ResolveBillTo fills every blank field of override from the contact.
func ResolveBillTo(override model.Address, c *model.Contact) model.Address {
	return fillBlank(override, ContactAddress(c))
}

// ResolveShipTo returns bill unchanged when useBillTo is set or no override
// was given; otherwise each blank override field falls back to bill.
func ResolveShipTo(override *model.Address, bill model.Address, useBillTo bool) model.Address {
	if useBillTo || override == nil {
		return bill
	}
	return fillBlank(*override, bill)
}

func fillBlank(a, fallback model.Address) model.Address {
	return model.Address{
		Name:    firstNonEmpty(a.Name, fallback.Name),
		Company: firstNonEmpty(a.Company, fallback.Company),
		Address: firstNonEmpty(a.Address, fallback.Address),
		City:    firstNonEmpty(a.City, fallback.City),
		Country: firstNonEmpty(a.Country, fallback.Country),
		Phone:   firstNonEmpty(a.Phone, fallback.Phone),
		Email:   firstNonEmpty(a.Email, fallback.Email),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func addressFromInput(in *dto.AddressInput) *model.Address {
	if in == nil {
		return nil
	}
	return &model.Address{
		Name:    in.Name,
		Company: in.Company,
		Address: in.Address,
		City:    in.City,
		Country: in.Country,
		Phone:   in.Phone,
		Email:   in.Email,
	}
}

func addressToView(a model.Address) dto.AddressView {
	return dto.AddressView{
		Name:    a.Name,
		Company: a.Company,
		Address: a.Address,
		City:    a.City,
		Country: a.Country,
		Phone:   a.Phone,
		Email:   a.Email,
	}
}
