package models

import (
	"time"
)

// Customer statuses
const (
	CustomerStatusActive    = "active"
	CustomerStatusSuspended = "suspended"
	CustomerStatusBlocked   = "blocked"
)

// Customer is a credit consumer identified by their national ID.
// Available credit is never stored; it is always derived from the
// customer's open transactions (see services/credit).
type Customer struct {
	ID         string `gorm:"type:varchar(36);primarykey"`
	NationalID string `gorm:"type:varchar(10);uniqueIndex;not null"`
	Phone      string `gorm:"type:varchar(20);uniqueIndex;not null"`
	Email      string `gorm:"type:varchar(255)"`
	Password   string `gorm:"type:varchar(255);not null"`
	FullName   string `gorm:"type:varchar(200);not null"`
	City       string `gorm:"type:varchar(100)"`

	CreditLimit float64 `gorm:"not null;default:500"`
	Status      string  `gorm:"type:varchar(20);not null;default:'active';index"`

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}
