package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactStatus is the pipeline stage of a contact.
type ContactStatus string

const (
	StatusProspect ContactStatus = "Prospect"
	StatusActive   ContactStatus = "Active"
	StatusVIP      ContactStatus = "VIP"
	StatusClosed   ContactStatus = "Closed"
)

// Valid reports whether s is one of the known statuses.
func (s ContactStatus) Valid() bool {
	switch s {
	case StatusProspect, StatusActive, StatusVIP, StatusClosed:
		return true
	}
	return false
}

// Contact is a customer or prospect. Optional text fields are stored as empty
// strings rather than NULL so address fallbacks can treat both the same way.
// Follow-up dates are free text as entered by the user.
type Contact struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Name             string        `gorm:"not null"`
	Company          string        `gorm:"not null;default:''"`
	Country          string        `gorm:"not null;default:''"`
	City             string        `gorm:"not null;default:''"`
	Address          string        `gorm:"not null;default:''"`
	Email            string        `gorm:"not null;default:''"`
	Phone            string        `gorm:"not null;default:''"`
	Whatsapp         string        `gorm:"not null;default:''"`
	Status           ContactStatus `gorm:"type:varchar(20);not null"`
	Source           string        `gorm:"not null;default:''"`
	NextFollowupDate string        `gorm:"not null;default:''"`
	LastContactDate  string        `gorm:"not null;default:''"`
	Notes            string        `gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time     `gorm:"index"`
	UpdatedAt        time.Time
}

func (Contact) TableName() string { return "contacts" }

func (c *Contact) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
