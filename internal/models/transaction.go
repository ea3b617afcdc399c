package models

import (
	"time"
)

// Transaction statuses. Terminal states are paid, cancelled and refunded.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusConfirmed = "confirmed"
	TransactionStatusPaid      = "paid"
	TransactionStatusOverdue   = "overdue"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusRefunded  = "refunded"
)

// Transaction is the ledger entry: a purchase on credit, repaid before a
// due date. Remaining amount and overdue state are always derived, never
// stored.
type Transaction struct {
	ID              string `gorm:"type:varchar(36);primarykey"`
	ReferenceNumber string `gorm:"type:varchar(20);uniqueIndex;not null"`

	CustomerID string  `gorm:"type:varchar(36);not null;index"`
	MerchantID string  `gorm:"type:varchar(36);not null;index"`
	BranchID   string  `gorm:"type:varchar(36);not null;index"`
	CashierID  *string `gorm:"type:varchar(36);index"`

	Subtotal    float64 `gorm:"not null"`
	Discount    float64 `gorm:"not null;default:0"`
	TotalAmount float64 `gorm:"not null"`

	Items JSONList `gorm:"type:jsonb"`

	TransactionDate time.Time `gorm:"not null;index"`
	DueDate         time.Time `gorm:"type:date;not null;index"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index"`

	PaidAmount float64 `gorm:"not null;default:0"`
	PaidAt     *time.Time

	ReturnedAmount float64 `gorm:"not null;default:0"`

	SettlementID *string `gorm:"type:varchar(36);index"`

	Notes              string
	CancellationReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionItem is one purchased line inside a transaction's items list.
type TransactionItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// LineTotal returns the item's contribution to the subtotal.
func (i TransactionItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// RemainingAmount is the portion of the total not yet paid or returned.
// It never goes negative across any legal sequence of operations.
func (t *Transaction) RemainingAmount() float64 {
	return t.TotalAmount - t.PaidAmount - t.ReturnedAmount
}

// IsTerminal reports whether the transaction can no longer change state.
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case TransactionStatusPaid, TransactionStatusCancelled, TransactionStatusRefunded:
		return true
	}
	return false
}

// IsOverdue reports whether the transaction's due date has passed without
// the balance being settled. Terminal transactions are never overdue.
func (t *Transaction) IsOverdue(now time.Time) bool {
	if t.IsTerminal() {
		return false
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := t.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return today.After(due)
}

// CountsAgainstCredit reports whether the transaction's remaining amount
// contributes to the customer's used credit.
func (t *Transaction) CountsAgainstCredit() bool {
	switch t.Status {
	case TransactionStatusPending, TransactionStatusConfirmed, TransactionStatusOverdue:
		return true
	}
	return false
}
