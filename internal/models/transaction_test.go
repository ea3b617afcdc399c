package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRemainingAmount(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		expected float64
	}{
		{
			name:     "untouched",
			tx:       Transaction{TotalAmount: 400},
			expected: 400,
		},
		{
			name:     "partially paid",
			tx:       Transaction{TotalAmount: 400, PaidAmount: 150},
			expected: 250,
		},
		{
			name:     "paid and returned",
			tx:       Transaction{TotalAmount: 500, PaidAmount: 200, ReturnedAmount: 100},
			expected: 200,
		},
		{
			name:     "fully settled",
			tx:       Transaction{TotalAmount: 500, PaidAmount: 300, ReturnedAmount: 200},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tx.RemainingAmount())
		})
	}
}

func TestTransactionIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  string
		dueDate time.Time
		want    bool
	}{
		{"confirmed past due", TransactionStatusConfirmed, now.AddDate(0, 0, -1), true},
		{"pending past due", TransactionStatusPending, now.AddDate(0, 0, -5), true},
		{"confirmed due today", TransactionStatusConfirmed, now, false},
		{"confirmed due tomorrow", TransactionStatusConfirmed, now.AddDate(0, 0, 1), false},
		{"paid past due", TransactionStatusPaid, now.AddDate(0, 0, -10), false},
		{"cancelled past due", TransactionStatusCancelled, now.AddDate(0, 0, -10), false},
		{"refunded past due", TransactionStatusRefunded, now.AddDate(0, 0, -10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Status: tt.status, DueDate: tt.dueDate}
			assert.Equal(t, tt.want, tx.IsOverdue(now))
		})
	}
}

func TestTransactionCountsAgainstCredit(t *testing.T) {
	open := []string{TransactionStatusPending, TransactionStatusConfirmed, TransactionStatusOverdue}
	closed := []string{TransactionStatusPaid, TransactionStatusCancelled, TransactionStatusRefunded}

	for _, status := range open {
		tx := Transaction{Status: status}
		assert.True(t, tx.CountsAgainstCredit(), status)
	}
	for _, status := range closed {
		tx := Transaction{Status: status}
		assert.False(t, tx.CountsAgainstCredit(), status)
	}
}

func TestTransactionItemLineTotal(t *testing.T) {
	item := TransactionItem{Name: "item", Quantity: 3, UnitPrice: 25.5}
	assert.Equal(t, 76.5, item.LineTotal())
}
