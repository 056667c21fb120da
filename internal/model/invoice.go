package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Address is one printed address block. It is embedded twice in Invoice with
// the bill_ and ship_ column prefixes.
type Address struct {
	Name    string `gorm:"not null;default:''"`
	Company string `gorm:"not null;default:''"`
	Address string `gorm:"not null;default:''"`
	City    string `gorm:"not null;default:''"`
	Country string `gorm:"not null;default:''"`
	Phone   string `gorm:"not null;default:''"`
	Email   string `gorm:"not null;default:''"`
}

// IsZero reports whether every field is blank.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Invoice is a proforma invoice header. TotalAmount and the address snapshots
// are frozen when the invoice is created.
type Invoice struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceNo            string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	ContactID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	IssueDate            string          `gorm:"type:varchar(10);not null;default:''"`
	RequiredDeliveryDate string          `gorm:"type:varchar(10);not null;default:''"`
	ShippingDate         string          `gorm:"type:varchar(10);not null;default:''"`
	DeliveryMode         string          `gorm:"not null;default:''"`
	TradeTerms           string          `gorm:"not null;default:''"`
	PaymentTerms         string          `gorm:"not null;default:''"`
	Currency             string          `gorm:"type:varchar(8);not null"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric;not null"`
	InternalShippingFee  decimal.Decimal `gorm:"type:numeric;not null"`
	PreviousBalanceNote  string          `gorm:"type:text;not null;default:''"`
	Bill                 Address         `gorm:"embedded;embeddedPrefix:bill_"`
	Ship                 Address         `gorm:"embedded;embeddedPrefix:ship_"`
	CreatedAt            time.Time       `gorm:"index"`
	UpdatedAt            time.Time

	Contact *Contact      `gorm:"foreignKey:ContactID;constraint:OnDelete:RESTRICT"`
	Items   []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// InvoiceItem is one printed line. Amount is stored at full precision and
// never recomputed from the catalog.
type InvoiceItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_items_line"`
	LineNo        int             `gorm:"not null;uniqueIndex:idx_invoice_items_line"`
	ProductID     *uuid.UUID      `gorm:"type:uuid;index"`
	Description   string          `gorm:"not null"`
	Specification string          `gorm:"not null;default:''"`
	Package       string          `gorm:"not null;default:''"`
	Form          string          `gorm:"not null;default:''"`
	Quantity      decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric;not null"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

func (it *InvoiceItem) BeforeCreate(_ *gorm.DB) error {
	assignID(&it.ID)
	return nil
}

// InvoiceCounter holds the last issued sequence per day stem when the counter
// number source is enabled.
type InvoiceCounter struct {
	DayKey  string `gorm:"type:varchar(64);primaryKey"`
	LastSeq int    `gorm:"not null"`
}

func (InvoiceCounter) TableName() string { return "invoice_counters" }
