package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const RoleAdmin = "admin"

// User is an operator allowed to sign in. The CRM has a single role today.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null;default:''"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Active       bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
