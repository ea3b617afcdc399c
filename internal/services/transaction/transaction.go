// Package transaction implements the sale lifecycle: creation on credit,
// confirmation, cancellation, returns and the overdue sweep. Every
// mutation re-derives the customer's credit position from the ledger
// before committing.
package transaction

import (
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/metrics"
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/services/access"
	"bariq/internal/services/audit"
	"bariq/internal/utils"
	"bariq/internal/validation"

	"github.com/google/uuid"
)

// CreateInput is a cashier- or manager-initiated sale.
type CreateInput struct {
	CustomerNationalID string
	BranchID           string
	CashierID          *string
	Items              []models.TransactionItem
	Discount           float64
	Notes              string
}

// ReturnInput reverses part of a transaction's amount.
type ReturnInput struct {
	Amount        float64
	Reason        string
	ReasonDetails string
	ReturnedItems []models.TransactionItem
}

// Service exposes the transaction lifecycle.
type Service interface {
	Create(staff *models.MerchantUser, in CreateInput) (*models.Transaction, error)
	Confirm(customerID, transactionID string) (*models.Transaction, error)
	Cancel(actor audit.Actor, staff *models.MerchantUser, transactionID, reason string) (*models.Transaction, error)
	ProcessReturn(actor audit.Actor, staff *models.MerchantUser, transactionID string, in ReturnInput) (*models.TransactionReturn, error)

	GetForCustomer(customerID, transactionID string) (*models.Transaction, error)
	GetForStaff(staff *models.MerchantUser, transactionID string) (*models.Transaction, error)
	ListForCustomer(customerID string, f repositories.TransactionFilter) ([]models.Transaction, int64, error)
	ListForStaff(staff *models.MerchantUser, f repositories.TransactionFilter) ([]models.Transaction, int64, error)
	ListReturns(staff *models.MerchantUser, f repositories.TransactionFilter) ([]models.TransactionReturn, error)

	// MarkOverdue flips confirmed transactions past their due date. It is
	// run periodically and reports how many rows changed.
	MarkOverdue() (int64, error)
}

type service struct {
	txs       repositories.TransactionRepository
	customers repositories.CustomerRepository
	merchants repositories.MerchantRepository
	auditor   audit.Recorder
	broadcast realtime.Broadcaster
	collector metrics.Collector
	rules     config.BusinessRules
}

func NewService(
	txs repositories.TransactionRepository,
	customers repositories.CustomerRepository,
	merchants repositories.MerchantRepository,
	auditor audit.Recorder,
	broadcast realtime.Broadcaster,
	collector metrics.Collector,
	rules config.BusinessRules,
) Service {
	if txs == nil {
		panic("transaction: transaction repository is required")
	}
	if customers == nil {
		panic("transaction: customer repository is required")
	}
	if merchants == nil {
		panic("transaction: merchant repository is required")
	}
	if auditor == nil {
		auditor = audit.NoopRecorder{}
	}
	if broadcast == nil {
		broadcast = realtime.NoopBroadcaster{}
	}
	if collector == nil {
		collector = metrics.NoopCollector{}
	}
	return &service{
		txs:       txs,
		customers: customers,
		merchants: merchants,
		auditor:   auditor,
		broadcast: broadcast,
		collector: collector,
		rules:     rules,
	}
}

func (s *service) Create(staff *models.MerchantUser, in CreateInput) (*models.Transaction, error) {
	v := validation.New()
	v.NationalID("national_id", in.CustomerNationalID)
	v.Required("branch_id", in.BranchID)
	v.Items("items", in.Items)
	v.Check(in.Discount >= 0, "discount", "cannot be negative")
	if !v.Valid() {
		for field, msg := range v.Errors {
			return nil, apperr.Validation("%s: %s", field, msg)
		}
	}

	branch, err := s.merchants.GetBranch(in.BranchID)
	if err != nil {
		if err == repositories.ErrBranchNotFound {
			return nil, apperr.NotFound("branch not found")
		}
		return nil, apperr.Internal("failed to load branch", err)
	}
	if branch.MerchantID != staff.MerchantID || !access.CanAccessBranch(staff, branch) {
		return nil, apperr.AccessDenied("branch is outside your scope")
	}
	if !branch.IsActive {
		return nil, apperr.Validation("branch is not active")
	}

	merchant, err := s.merchants.GetByID(staff.MerchantID)
	if err != nil {
		return nil, apperr.Internal("failed to load merchant", err)
	}
	if merchant.Status != models.MerchantStatusActive {
		return nil, apperr.AccessDenied("merchant is not active")
	}

	customer, err := s.customers.GetByNationalID(in.CustomerNationalID)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Internal("failed to load customer", err)
	}
	if !customer.IsActive() {
		return nil, apperr.AccessDenied("customer account is not active")
	}

	var subtotal float64
	items := make(models.JSONList, 0, len(in.Items))
	for _, item := range in.Items {
		subtotal += item.LineTotal()
		items = append(items, map[string]interface{}{
			"name":       item.Name,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
		})
	}
	total := subtotal - in.Discount
	if total < s.rules.MinTransactionAmount {
		return nil, apperr.Validation("transaction amount must be at least %.2f", s.rules.MinTransactionAmount)
	}
	if total > s.rules.MaxTransactionAmount {
		return nil, apperr.Validation("transaction amount cannot exceed %.2f", s.rules.MaxTransactionAmount)
	}

	used, err := s.txs.SumOpenRemaining(customer.ID)
	if err != nil {
		return nil, apperr.Internal("failed to compute used credit", err)
	}
	available := customer.CreditLimit - used
	if total > available {
		return nil, apperr.InsufficientCredit("available credit %.2f is below the transaction amount %.2f", available, total)
	}

	now := time.Now().UTC()
	tx := &models.Transaction{
		ID:              uuid.NewString(),
		ReferenceNumber: utils.GenerateReference(utils.RefPrefixTransaction),
		CustomerID:      customer.ID,
		MerchantID:      merchant.ID,
		BranchID:        branch.ID,
		CashierID:       in.CashierID,
		Subtotal:        subtotal,
		Discount:        in.Discount,
		TotalAmount:     total,
		Items:           items,
		TransactionDate: now,
		DueDate:         now.AddDate(0, 0, s.rules.RepaymentDays),
		Status:          models.TransactionStatusPending,
		Notes:           in.Notes,
	}
	if tx.CashierID == nil {
		tx.CashierID = &staff.ID
	}

	if err := s.txs.Create(tx); err != nil {
		return nil, apperr.Internal("failed to create transaction", err)
	}

	s.collector.TransactionCreated(total)
	payload := map[string]interface{}{
		"transaction_id": tx.ID,
		"reference":      tx.ReferenceNumber,
		"amount":         tx.TotalAmount,
		"due_date":       tx.DueDate.Format("2006-01-02"),
	}
	s.broadcast.Emit(realtime.CustomerRoom(customer.ID), realtime.EventTransactionCreated, payload)
	s.broadcast.Emit(realtime.BranchRoom(branch.ID), realtime.EventTransactionCreated, payload)
	return tx, nil
}

// Confirm moves a pending transaction to confirmed. Only the transaction's
// own customer may confirm, and only from pending.
func (s *service) Confirm(customerID, transactionID string) (*models.Transaction, error) {
	tx, err := s.getOwned(customerID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != models.TransactionStatusPending {
		return nil, apperr.Conflict("transaction is %s and cannot be confirmed", tx.Status)
	}

	tx.Status = models.TransactionStatusConfirmed
	if err := s.txs.Update(tx); err != nil {
		return nil, apperr.Internal("failed to confirm transaction", err)
	}

	s.broadcast.Emit(realtime.BranchRoom(tx.BranchID), realtime.EventTransactionConfirmed, map[string]interface{}{
		"transaction_id": tx.ID,
		"reference":      tx.ReferenceNumber,
	})
	return tx, nil
}

// Cancel voids a transaction that has seen no money movement. Anything
// partially paid or returned must be unwound through returns instead.
func (s *service) Cancel(actor audit.Actor, staff *models.MerchantUser, transactionID, reason string) (*models.Transaction, error) {
	tx, err := s.getScoped(staff, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.IsTerminal() {
		return nil, apperr.Conflict("transaction is already %s", tx.Status)
	}
	if tx.PaidAmount > 0 || tx.ReturnedAmount > 0 {
		return nil, apperr.Conflict("transaction has payments or returns and cannot be cancelled")
	}
	if reason == "" {
		return nil, apperr.Validation("cancellation reason is required")
	}

	oldStatus := tx.Status
	tx.Status = models.TransactionStatusCancelled
	tx.CancellationReason = reason
	if err := s.txs.Update(tx); err != nil {
		return nil, apperr.Internal("failed to cancel transaction", err)
	}

	s.auditor.Record(actor, "transaction_cancelled", "transaction", tx.ID,
		models.JSON{"status": oldStatus},
		models.JSON{"status": tx.Status, "reason": reason})
	s.broadcast.Emit(realtime.CustomerRoom(tx.CustomerID), realtime.EventTransactionCancelled, map[string]interface{}{
		"transaction_id": tx.ID,
		"reference":      tx.ReferenceNumber,
		"reason":         reason,
	})
	return tx, nil
}

// ProcessReturn reduces the transaction's balance by the returned amount.
// The return can never exceed what is still owed net of prior payments
// and returns; a fully returned transaction becomes refunded, a balance
// cleared by a mix of payments and returns becomes paid.
func (s *service) ProcessReturn(actor audit.Actor, staff *models.MerchantUser, transactionID string, in ReturnInput) (*models.TransactionReturn, error) {
	if in.Amount <= 0 {
		return nil, apperr.Validation("return amount must be positive")
	}
	if in.Reason == "" {
		return nil, apperr.Validation("return reason is required")
	}

	tx, err := s.getScoped(staff, transactionID)
	if err != nil {
		return nil, err
	}
	switch tx.Status {
	case models.TransactionStatusCancelled, models.TransactionStatusRefunded:
		return nil, apperr.Conflict("transaction is %s and cannot accept returns", tx.Status)
	}

	remaining := tx.RemainingAmount()
	if in.Amount > remaining {
		return nil, apperr.Validation("return amount %.2f exceeds the remaining balance %.2f", in.Amount, remaining)
	}

	now := time.Now().UTC()
	returnedItems := make(models.JSONList, 0, len(in.ReturnedItems))
	for _, item := range in.ReturnedItems {
		returnedItems = append(returnedItems, map[string]interface{}{
			"name":       item.Name,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
		})
	}

	ret := &models.TransactionReturn{
		ID:              uuid.NewString(),
		ReferenceNumber: utils.GenerateReference(utils.RefPrefixReturn),
		TransactionID:   tx.ID,
		ReturnAmount:    in.Amount,
		Reason:          in.Reason,
		ReasonDetails:   in.ReasonDetails,
		ReturnedItems:   returnedItems,
		ProcessedBy:     &staff.ID,
		ProcessedAt:     &now,
	}

	oldStatus := tx.Status
	tx.ReturnedAmount += in.Amount
	if tx.RemainingAmount() <= 0 {
		if tx.ReturnedAmount >= tx.TotalAmount {
			tx.Status = models.TransactionStatusRefunded
		} else {
			tx.Status = models.TransactionStatusPaid
			tx.PaidAt = &now
		}
	}

	if err := s.txs.SaveReturn(ret, tx); err != nil {
		return nil, apperr.Internal("failed to save return", err)
	}

	s.auditor.Record(actor, "transaction_returned", "transaction", tx.ID,
		models.JSON{"status": oldStatus, "returned_amount": tx.ReturnedAmount - in.Amount},
		models.JSON{"status": tx.Status, "returned_amount": tx.ReturnedAmount, "return_id": ret.ID})
	s.broadcast.Emit(realtime.CustomerRoom(tx.CustomerID), realtime.EventTransactionReturned, map[string]interface{}{
		"transaction_id": tx.ID,
		"return_amount":  in.Amount,
		"status":         tx.Status,
	})
	return ret, nil
}

func (s *service) GetForCustomer(customerID, transactionID string) (*models.Transaction, error) {
	return s.getOwned(customerID, transactionID)
}

func (s *service) GetForStaff(staff *models.MerchantUser, transactionID string) (*models.Transaction, error) {
	return s.getScoped(staff, transactionID)
}

func (s *service) ListForCustomer(customerID string, f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	txs, total, err := s.txs.ListForCustomer(customerID, f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list transactions", err)
	}
	return txs, total, nil
}

func (s *service) ListForStaff(staff *models.MerchantUser, f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	scope, err := s.staffScope(staff)
	if err != nil {
		return nil, 0, err
	}
	txs, total, err := s.txs.ListScoped(staff.MerchantID, scope, f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list transactions", err)
	}
	return txs, total, nil
}

func (s *service) ListReturns(staff *models.MerchantUser, f repositories.TransactionFilter) ([]models.TransactionReturn, error) {
	if staff.Role == models.RoleCashier {
		return nil, apperr.AccessDenied("cashiers cannot view returns")
	}
	returns, err := s.txs.ListReturns(staff.MerchantID, f)
	if err != nil {
		return nil, apperr.Internal("failed to list returns", err)
	}
	return returns, nil
}

func (s *service) MarkOverdue() (int64, error) {
	n, err := s.txs.MarkOverdue(time.Now())
	if err != nil {
		return 0, apperr.Internal("failed to mark overdue transactions", err)
	}
	return n, nil
}

// getOwned loads a transaction and verifies the customer owns it. A
// transaction belonging to someone else reads as not found, never as
// denied, so existence is not leaked.
func (s *service) getOwned(customerID, transactionID string) (*models.Transaction, error) {
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

func (s *service) getScoped(staff *models.MerchantUser, transactionID string) (*models.Transaction, error) {
	tx, err := s.txs.GetByID(transactionID)
	if err != nil {
		if err == repositories.ErrTransactionNotFound {
			return nil, apperr.NotFound("transaction not found")
		}
		return nil, apperr.Internal("failed to load transaction", err)
	}
	if tx.MerchantID != staff.MerchantID {
		return nil, apperr.NotFound("transaction not found")
	}

	scope, err := s.staffScope(staff)
	if err != nil {
		return nil, err
	}
	switch {
	case scope.All:
	case scope.CashierID != "":
		if tx.CashierID == nil || *tx.CashierID != scope.CashierID {
			return nil, apperr.AccessDenied("transaction is outside your scope")
		}
	default:
		inScope := false
		for _, id := range scope.BranchIDs {
			if id == tx.BranchID {
				inScope = true
				break
			}
		}
		if !inScope {
			return nil, apperr.AccessDenied("transaction is outside your scope")
		}
	}
	return tx, nil
}

func (s *service) staffScope(staff *models.MerchantUser) (access.Scope, error) {
	branches, err := s.merchants.ListBranches(staff.MerchantID)
	if err != nil {
		return access.Scope{}, apperr.Internal("failed to load branches", err)
	}
	return access.TransactionScope(staff, branches), nil
}
