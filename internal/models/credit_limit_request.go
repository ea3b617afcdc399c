package models

import (
	"time"
)

// CreditLimitRequest statuses
const (
	CreditRequestStatusPending  = "pending"
	CreditRequestStatusApproved = "approved"
	CreditRequestStatusRejected = "rejected"
)

// CreditLimitRequest is a customer-initiated request to raise their credit
// limit. A request is decided at most once; it cannot leave a terminal
// status.
type CreditLimitRequest struct {
	ID         string `gorm:"type:varchar(36);primarykey"`
	CustomerID string `gorm:"type:varchar(36);not null;index"`

	CurrentLimit   float64 `gorm:"not null"`
	RequestedLimit float64 `gorm:"not null"`
	Reason         string

	Status         string `gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedLimit  *float64
	DecisionReason string
	DecidedBy      *string `gorm:"type:varchar(36)"`
	DecidedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDecided reports whether the request has already been approved or
// rejected.
func (r *CreditLimitRequest) IsDecided() bool {
	return r.Status != CreditRequestStatusPending
}
