// Package credit derives a customer's credit position from their open
// transactions and manages limit changes. Available credit is never
// stored or cached; every read recomputes it from the ledger.
package credit

import (
	"math"
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/services/audit"

	"github.com/google/uuid"
)

// Summary is a customer's credit position at the time of the call.
type Summary struct {
	CreditLimit     float64 `json:"credit_limit"`
	UsedCredit      float64 `json:"used_credit"`
	AvailableCredit float64 `json:"available_credit"`
	SpendableCredit float64 `json:"spendable_credit"`
}

// Service exposes the credit ledger and limit management.
type Service interface {
	UsedCredit(customerID string) (float64, error)
	Summary(customerID string) (*Summary, error)

	UpdateLimit(actor audit.Actor, customerID string, newLimit float64, reason string) (*models.Customer, error)

	RequestIncrease(customerID string, requestedLimit float64, reason string) (*models.CreditLimitRequest, error)
	DecideRequest(actor audit.Actor, requestID string, approve bool, approvedLimit *float64, reason string) (*models.CreditLimitRequest, error)
	ListRequests(status string, limit, offset int) ([]models.CreditLimitRequest, int64, error)
	ListCustomerRequests(customerID string) ([]models.CreditLimitRequest, error)
}

type service struct {
	customers repositories.CustomerRepository
	txs       repositories.TransactionRepository
	requests  repositories.CreditRequestRepository
	auditor   audit.Recorder
	broadcast realtime.Broadcaster
	rules     config.BusinessRules
}

func NewService(
	customers repositories.CustomerRepository,
	txs repositories.TransactionRepository,
	requests repositories.CreditRequestRepository,
	auditor audit.Recorder,
	broadcast realtime.Broadcaster,
	rules config.BusinessRules,
) Service {
	if customers == nil {
		panic("credit: customer repository is required")
	}
	if txs == nil {
		panic("credit: transaction repository is required")
	}
	if requests == nil {
		panic("credit: credit request repository is required")
	}
	if auditor == nil {
		auditor = audit.NoopRecorder{}
	}
	if broadcast == nil {
		broadcast = realtime.NoopBroadcaster{}
	}
	return &service{
		customers: customers,
		txs:       txs,
		requests:  requests,
		auditor:   auditor,
		broadcast: broadcast,
		rules:     rules,
	}
}

func (s *service) UsedCredit(customerID string) (float64, error) {
	used, err := s.txs.SumOpenRemaining(customerID)
	if err != nil {
		return 0, apperr.Internal("failed to compute used credit", err)
	}
	return used, nil
}

func (s *service) Summary(customerID string) (*Summary, error) {
	customer, err := s.customers.GetByID(customerID)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Internal("failed to load customer", err)
	}

	used, err := s.UsedCredit(customerID)
	if err != nil {
		return nil, err
	}

	available := math.Max(0, customer.CreditLimit-used)
	return &Summary{
		CreditLimit:     customer.CreditLimit,
		UsedCredit:      used,
		AvailableCredit: available,
		SpendableCredit: math.Min(available, s.rules.MaxTransactionAmount),
	}, nil
}

func (s *service) UpdateLimit(actor audit.Actor, customerID string, newLimit float64, reason string) (*models.Customer, error) {
	if newLimit < 0 {
		return nil, apperr.Validation("credit limit cannot be negative")
	}
	if newLimit > s.rules.MaxCreditLimit {
		return nil, apperr.Validation("credit limit cannot exceed %.2f", s.rules.MaxCreditLimit)
	}

	customer, err := s.customers.GetByID(customerID)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Internal("failed to load customer", err)
	}

	oldLimit := customer.CreditLimit
	customer.CreditLimit = newLimit
	if err := s.customers.Update(customer); err != nil {
		return nil, apperr.Internal("failed to update credit limit", err)
	}

	s.auditor.Record(actor, "credit_limit_updated", "customer", customer.ID,
		models.JSON{"credit_limit": oldLimit},
		models.JSON{"credit_limit": newLimit, "reason": reason})
	s.broadcast.Emit(realtime.CustomerRoom(customer.ID), realtime.EventCreditUpdated, map[string]interface{}{
		"customer_id":  customer.ID,
		"credit_limit": newLimit,
	})
	return customer, nil
}

func (s *service) RequestIncrease(customerID string, requestedLimit float64, reason string) (*models.CreditLimitRequest, error) {
	customer, err := s.customers.GetByID(customerID)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Internal("failed to load customer", err)
	}
	if !customer.IsActive() {
		return nil, apperr.AccessDenied("account is not active")
	}

	if requestedLimit <= customer.CreditLimit {
		return nil, apperr.Validation("requested limit must exceed the current limit of %.2f", customer.CreditLimit)
	}
	if requestedLimit > s.rules.MaxCreditLimit {
		return nil, apperr.Validation("requested limit cannot exceed %.2f", s.rules.MaxCreditLimit)
	}

	existing, err := s.requests.ListByCustomer(customerID)
	if err != nil {
		return nil, apperr.Internal("failed to check existing requests", err)
	}
	for i := range existing {
		if !existing[i].IsDecided() {
			return nil, apperr.Conflict("a credit limit request is already pending")
		}
	}

	req := &models.CreditLimitRequest{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		CurrentLimit:   customer.CreditLimit,
		RequestedLimit: requestedLimit,
		Reason:         reason,
		Status:         models.CreditRequestStatusPending,
	}
	if err := s.requests.Create(req); err != nil {
		return nil, apperr.Internal("failed to create credit request", err)
	}

	s.broadcast.Emit(realtime.AdminRoom, realtime.EventCreditRequestNew, map[string]interface{}{
		"request_id":      req.ID,
		"customer_id":     customerID,
		"requested_limit": requestedLimit,
	})
	return req, nil
}

// DecideRequest approves or rejects a pending request. A request is
// decided at most once; deciding an already-decided request is a
// conflict regardless of the direction of either decision.
func (s *service) DecideRequest(actor audit.Actor, requestID string, approve bool, approvedLimit *float64, reason string) (*models.CreditLimitRequest, error) {
	req, err := s.requests.GetByID(requestID)
	if err != nil {
		if err == repositories.ErrCreditRequestNotFound {
			return nil, apperr.NotFound("credit limit request not found")
		}
		return nil, apperr.Internal("failed to load credit request", err)
	}
	if req.IsDecided() {
		return nil, apperr.Conflict("credit limit request has already been %s", req.Status)
	}

	now := time.Now().UTC()
	req.DecisionReason = reason
	req.DecidedBy = &actor.ID
	req.DecidedAt = &now

	var customer *models.Customer
	if approve {
		newLimit := req.RequestedLimit
		if approvedLimit != nil {
			newLimit = *approvedLimit
		}
		if newLimit <= 0 || newLimit > s.rules.MaxCreditLimit {
			return nil, apperr.Validation("approved limit must be between 0 and %.2f", s.rules.MaxCreditLimit)
		}

		customer, err = s.customers.GetByID(req.CustomerID)
		if err != nil {
			return nil, apperr.Internal("failed to load customer", err)
		}
		customer.CreditLimit = newLimit
		req.Status = models.CreditRequestStatusApproved
		req.ApprovedLimit = &newLimit
	} else {
		req.Status = models.CreditRequestStatusRejected
	}

	if err := s.requests.ApplyDecision(req, customer); err != nil {
		return nil, apperr.Internal("failed to apply credit decision", err)
	}

	newValues := models.JSON{"status": req.Status, "reason": reason}
	if req.ApprovedLimit != nil {
		newValues["approved_limit"] = *req.ApprovedLimit
	}
	s.auditor.Record(actor, "credit_request_decided", "credit_limit_request", req.ID,
		models.JSON{"status": models.CreditRequestStatusPending, "requested_limit": req.RequestedLimit},
		newValues)

	if customer != nil {
		s.broadcast.Emit(realtime.CustomerRoom(customer.ID), realtime.EventCreditUpdated, map[string]interface{}{
			"customer_id":  customer.ID,
			"credit_limit": customer.CreditLimit,
		})
	}
	return req, nil
}

func (s *service) ListRequests(status string, limit, offset int) ([]models.CreditLimitRequest, int64, error) {
	reqs, total, err := s.requests.List(status, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list credit requests", err)
	}
	return reqs, total, nil
}

func (s *service) ListCustomerRequests(customerID string) ([]models.CreditLimitRequest, error) {
	reqs, err := s.requests.ListByCustomer(customerID)
	if err != nil {
		return nil, apperr.Internal("failed to list credit requests", err)
	}
	return reqs, nil
}
