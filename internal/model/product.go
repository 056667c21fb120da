package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog item. Inactive products stay in the table but
// are hidden from search.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShortName     string          `gorm:"not null;default:''"`
	FullName      string          `gorm:"index;not null"`
	Specification string          `gorm:"not null;default:''"`
	Package       string          `gorm:"not null;default:''"`
	Form          string          `gorm:"not null;default:''"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency      string          `gorm:"type:varchar(8);not null"`
	Active        bool            `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// CustomerPrice overrides a product's unit price for one contact.
type CustomerPrice struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContactID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customer_prices_pair"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_customer_prices_pair;index"`
	SpecialPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Contact *Contact `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (CustomerPrice) TableName() string { return "customer_prices" }

func (cp *CustomerPrice) BeforeCreate(_ *gorm.DB) error {
	assignID(&cp.ID)
	return nil
}
