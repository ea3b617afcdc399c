package models

import (
	"time"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// DefaultLockTimeout bounds how long a processing lock is honoured before
// it is considered stale.
const DefaultLockTimeout = 60 * time.Second

// Payment is one attempt to reduce a transaction's remaining amount.
// ProcessingLockedAt implements an advisory, self-expiring lock against
// double-submission; the stamp is only trustworthy when set through a
// conditional update at the storage layer.
type Payment struct {
	ID              string `gorm:"type:varchar(36);primarykey"`
	ReferenceNumber string `gorm:"type:varchar(20);uniqueIndex;not null"`

	TransactionID string `gorm:"type:varchar(36);not null;index"`
	CustomerID    string `gorm:"type:varchar(36);not null;index"`

	Amount        float64 `gorm:"not null"`
	PaymentMethod string  `gorm:"type:varchar(30)"`
	Status        string  `gorm:"type:varchar(20);not null;default:'pending'"`

	GatewayReference string `gorm:"type:varchar(100);index"`
	GatewayResponse  string

	CompletedAt *time.Time

	ProcessingLockedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether an unexpired processing lock is held at now.
func (p *Payment) IsLocked(now time.Time, timeout time.Duration) bool {
	if p.ProcessingLockedAt == nil {
		return false
	}
	return now.Before(p.ProcessingLockedAt.Add(timeout))
}
