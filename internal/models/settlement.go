package models

import (
	"time"
)

// Settlement statuses
const (
	SettlementStatusPending     = "pending"
	SettlementStatusApproved    = "approved"
	SettlementStatusTransferred = "transferred"
)

// Settlement aggregates a merchant's settled transactions over a period,
// net of commission, for payout.
type Settlement struct {
	ID              string `gorm:"type:varchar(36);primarykey"`
	ReferenceNumber string `gorm:"type:varchar(20);uniqueIndex;not null"`

	MerchantID string  `gorm:"type:varchar(36);not null;index"`
	BranchID   *string `gorm:"type:varchar(36);index"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`

	GrossAmount      float64 `gorm:"not null"`
	CommissionAmount float64 `gorm:"not null"`
	NetAmount        float64 `gorm:"not null"`
	TransactionCount int     `gorm:"not null"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index"`

	ApprovedBy *string `gorm:"type:varchar(36)"`
	ApprovedAt *time.Time

	TransferReference string `gorm:"type:varchar(100)"`
	TransferredAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
