package models

import (
	"time"
)

// Merchant statuses
const (
	MerchantStatusPending   = "pending"
	MerchantStatusActive    = "active"
	MerchantStatusSuspended = "suspended"
)

// Merchant is a partner store. It owns regions and branches and accrues
// settlements net of its commission rate.
type Merchant struct {
	ID                     string `gorm:"type:varchar(36);primarykey"`
	NameAr                 string `gorm:"type:varchar(200);not null"`
	NameEn                 string `gorm:"type:varchar(200)"`
	CommercialRegistration string `gorm:"type:varchar(50);uniqueIndex;not null"`
	TaxNumber              string `gorm:"type:varchar(50)"`
	BusinessType           string `gorm:"type:varchar(50)"`

	Email   string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone   string `gorm:"type:varchar(20);not null"`
	Website string `gorm:"type:varchar(255)"`

	City        string `gorm:"type:varchar(100)"`
	District    string `gorm:"type:varchar(100)"`
	AddressLine string

	BankName          string `gorm:"type:varchar(100)"`
	IBAN              string `gorm:"type:varchar(34)"`
	AccountHolderName string `gorm:"type:varchar(200)"`

	CommissionRate float64 `gorm:"not null;default:2.5"`

	Status       string `gorm:"type:varchar(20);not null;default:'pending';index"`
	StatusReason string
	ApprovedBy   *string `gorm:"type:varchar(36)"`
	ApprovedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Region is an optional geographic grouping of branches under a merchant.
type Region struct {
	ID         string `gorm:"type:varchar(36);primarykey"`
	MerchantID string `gorm:"type:varchar(36);not null;index"`
	Name       string `gorm:"type:varchar(200);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Branch is a physical location belonging to exactly one merchant and
// optionally one region.
type Branch struct {
	ID         string  `gorm:"type:varchar(36);primarykey"`
	MerchantID string  `gorm:"type:varchar(36);not null;index"`
	RegionID   *string `gorm:"type:varchar(36);index"`
	Name       string  `gorm:"type:varchar(200);not null"`
	City       string  `gorm:"type:varchar(100)"`
	Address    string
	Phone      string `gorm:"type:varchar(20)"`
	IsActive   bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
