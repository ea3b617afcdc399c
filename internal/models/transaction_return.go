package models

import (
	"time"
)

// TransactionReturn reduces a transaction's remaining amount independently
// of payments. The returned total can never exceed what is still owed net
// of prior payments.
type TransactionReturn struct {
	ID              string `gorm:"type:varchar(36);primarykey"`
	ReferenceNumber string `gorm:"type:varchar(20);uniqueIndex;not null"`
	TransactionID   string `gorm:"type:varchar(36);not null;index"`

	ReturnAmount  float64 `gorm:"not null"`
	Reason        string  `gorm:"type:varchar(100);not null"`
	ReasonDetails string
	ReturnedItems JSONList `gorm:"type:jsonb"`

	ProcessedBy *string `gorm:"type:varchar(36)"`
	ProcessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
