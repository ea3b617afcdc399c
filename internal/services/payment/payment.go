// Package payment applies repayments against transactions. Processing is
// serialized per payment through a self-expiring storage-level lock, and
// the payment row and the transaction's new balance commit atomically.
package payment

import (
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/metrics"
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/utils"

	"github.com/google/uuid"
)

// methods that settle through the external gateway rather than in store.
var gatewayMethods = map[string]bool{
	"card":      true,
	"apple_pay": true,
}

var validMethods = map[string]bool{
	"card":      true,
	"apple_pay": true,
	"cash":      true,
	"bank":      true,
}

// Debt summarizes what a customer currently owes.
type Debt struct {
	TotalOwed    float64    `json:"total_owed"`
	OpenCount    int        `json:"open_count"`
	OverdueCount int        `json:"overdue_count"`
	NextDueDate  *time.Time `json:"next_due_date,omitempty"`
}

// Service applies payments to transactions.
type Service interface {
	// MakePayment records and processes a repayment by the customer
	// against one of their open transactions.
	MakePayment(customerID, transactionID string, amount float64, method string) (*models.Payment, error)

	// Retry re-processes a payment that previously failed. A payment
	// already being processed is a conflict, not a second charge.
	Retry(customerID, paymentID string) (*models.Payment, error)

	Get(customerID, paymentID string) (*models.Payment, error)
	List(customerID string, limit, offset int) ([]models.Payment, int64, error)
	CustomerDebt(customerID string) (*Debt, error)
}

type service struct {
	payments  repositories.PaymentRepository
	txs       repositories.TransactionRepository
	gateway   Gateway
	broadcast realtime.Broadcaster
	collector metrics.Collector
	rules     config.BusinessRules
}

func NewService(
	payments repositories.PaymentRepository,
	txs repositories.TransactionRepository,
	gateway Gateway,
	broadcast realtime.Broadcaster,
	collector metrics.Collector,
	rules config.BusinessRules,
) Service {
	if payments == nil {
		panic("payment: payment repository is required")
	}
	if txs == nil {
		panic("payment: transaction repository is required")
	}
	if gateway == nil {
		gateway = instantGateway{}
	}
	if broadcast == nil {
		broadcast = realtime.NoopBroadcaster{}
	}
	if collector == nil {
		collector = metrics.NoopCollector{}
	}
	return &service{
		payments:  payments,
		txs:       txs,
		gateway:   gateway,
		broadcast: broadcast,
		collector: collector,
		rules:     rules,
	}
}

func (s *service) MakePayment(customerID, transactionID string, amount float64, method string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}
	if !validMethods[method] {
		return nil, apperr.Validation("unsupported payment method %q", method)
	}

	tx, err := s.getOwnedTransaction(customerID, transactionID)
	if err != nil {
		return nil, err
	}
	if !tx.CountsAgainstCredit() {
		return nil, apperr.Conflict("transaction is %s and cannot accept payments", tx.Status)
	}

	remaining := tx.RemainingAmount()
	if amount > remaining {
		return nil, apperr.Validation("payment amount %.2f exceeds the remaining balance %.2f", amount, remaining)
	}

	payment := &models.Payment{
		ID:              uuid.NewString(),
		ReferenceNumber: utils.GenerateReference(utils.RefPrefixPayment),
		TransactionID:   tx.ID,
		CustomerID:      customerID,
		Amount:          amount,
		PaymentMethod:   method,
		Status:          models.PaymentStatusPending,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, apperr.Internal("failed to create payment", err)
	}

	return s.process(payment, tx)
}

func (s *service) Retry(customerID, paymentID string) (*models.Payment, error) {
	payment, err := s.getOwnedPayment(customerID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusCompleted {
		return nil, apperr.Conflict("payment is already completed")
	}

	tx, err := s.getOwnedTransaction(customerID, payment.TransactionID)
	if err != nil {
		return nil, err
	}
	if !tx.CountsAgainstCredit() {
		return nil, apperr.Conflict("transaction is %s and cannot accept payments", tx.Status)
	}
	if payment.Amount > tx.RemainingAmount() {
		return nil, apperr.Validation("payment amount %.2f exceeds the remaining balance %.2f", payment.Amount, tx.RemainingAmount())
	}

	return s.process(payment, tx)
}

// process runs the charge under the payment's processing lock. The lock
// is a conditional stamp at the storage layer: of two concurrent attempts
// on the same payment, exactly one acquires it and the other observes a
// conflict. A crashed holder's lock expires on its own.
func (s *service) process(payment *models.Payment, tx *models.Transaction) (*models.Payment, error) {
	acquired, err := s.payments.AcquireProcessingLock(payment.ID, s.rules.PaymentLockTimeout)
	if err != nil {
		return nil, apperr.Internal("failed to acquire processing lock", err)
	}
	if !acquired {
		s.collector.LockContention()
		return nil, apperr.Conflict("payment is already being processed")
	}

	if gatewayMethods[payment.PaymentMethod] {
		gatewayRef, chargeErr := s.gateway.Charge(payment.Amount, payment.PaymentMethod, payment.ReferenceNumber)
		if chargeErr != nil {
			payment.Status = models.PaymentStatusFailed
			payment.GatewayResponse = chargeErr.Error()
			if updateErr := s.payments.Update(payment); updateErr != nil {
				return nil, apperr.Internal("failed to record payment failure", updateErr)
			}
			if releaseErr := s.payments.ReleaseProcessingLock(payment.ID); releaseErr != nil {
				return nil, apperr.Internal("failed to release processing lock", releaseErr)
			}
			s.collector.PaymentFailed("gateway_declined")
			return nil, apperr.Validation("payment was declined")
		}
		payment.GatewayReference = gatewayRef
	}

	now := time.Now().UTC()
	payment.Status = models.PaymentStatusCompleted
	payment.CompletedAt = &now
	payment.ProcessingLockedAt = nil

	oldStatus := tx.Status
	tx.PaidAmount += payment.Amount
	if tx.RemainingAmount() <= 0 {
		tx.Status = models.TransactionStatusPaid
		tx.PaidAt = &now
	}

	if err := s.payments.SaveWithTransaction(payment, tx); err != nil {
		return nil, apperr.Internal("failed to apply payment", err)
	}

	s.collector.PaymentProcessed(payment.PaymentMethod)
	if oldStatus != tx.Status && tx.Status == models.TransactionStatusPaid {
		s.collector.TransactionPaid(tx.TotalAmount)
	}

	payload := map[string]interface{}{
		"payment_id":     payment.ID,
		"transaction_id": tx.ID,
		"amount":         payment.Amount,
		"status":         tx.Status,
		"remaining":      tx.RemainingAmount(),
	}
	s.broadcast.Emit(realtime.CustomerRoom(tx.CustomerID), realtime.EventPaymentCompleted, payload)
	s.broadcast.Emit(realtime.MerchantRoom(tx.MerchantID), realtime.EventPaymentCompleted, payload)
	return payment, nil
}

func (s *service) Get(customerID, paymentID string) (*models.Payment, error) {
	return s.getOwnedPayment(customerID, paymentID)
}

func (s *service) List(customerID string, limit, offset int) ([]models.Payment, int64, error) {
	payments, total, err := s.payments.ListForCustomer(customerID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list payments", err)
	}
	return payments, total, nil
}

func (s *service) CustomerDebt(customerID string) (*Debt, error) {
	txs, _, err := s.txs.ListForCustomer(customerID, repositories.TransactionFilter{Limit: 1000})
	if err != nil {
		return nil, apperr.Internal("failed to list transactions", err)
	}

	debt := &Debt{}
	for i := range txs {
		tx := &txs[i]
		if !tx.CountsAgainstCredit() {
			continue
		}
		debt.TotalOwed += tx.RemainingAmount()
		debt.OpenCount++
		if tx.Status == models.TransactionStatusOverdue {
			debt.OverdueCount++
		}
		if debt.NextDueDate == nil || tx.DueDate.Before(*debt.NextDueDate) {
			due := tx.DueDate
			debt.NextDueDate = &due
		}
	}
	return debt, nil
}

func (s *service) getOwnedTransaction(customerID, transactionID string) (*models.Transaction, error) {
	tx, err := s.txs.GetByID(transactionID)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return nil, apperr.NotFound("transaction not found")
		}
		return nil, apperr.Internal("failed to load transaction", err)
	}
	if tx.CustomerID != customerID {
		return nil, apperr.NotFound("transaction not found")
	}
	return tx, nil
}

func (s *service) getOwnedPayment(customerID, paymentID string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(paymentID)
	if err != nil {
		if err == repositories.ErrPaymentNotFound {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, apperr.Internal("failed to load payment", err)
	}
	if payment.CustomerID != customerID {
		return nil, apperr.NotFound("payment not found")
	}
	return payment, nil
}
