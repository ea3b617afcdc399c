// Package admin implements the platform operator surface: merchant
// onboarding decisions, customer account control, the operations
// dashboard and the audit trail.
package admin

import (
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/services/audit"
)

// DashboardStats is the operations overview.
type DashboardStats struct {
	TotalCustomers     int64   `json:"total_customers"`
	ActiveCustomers    int64   `json:"active_customers"`
	TotalMerchants     int64   `json:"total_merchants"`
	PendingMerchants   int64   `json:"pending_merchants"`
	OpenTransactions   int64   `json:"open_transactions"`
	OverdueCount       int64   `json:"overdue_count"`
	PendingSettlements int64   `json:"pending_settlements"`
	OverdueExposure    float64 `json:"overdue_exposure"`
}

// Service is the platform admin surface.
type Service interface {
	Dashboard() (*DashboardStats, error)

	ListCustomers(f repositories.CustomerFilter) ([]models.Customer, int64, error)
	GetCustomer(id string) (*models.Customer, error)
	SetCustomerStatus(actor audit.Actor, customerID, status, reason string) (*models.Customer, error)

	ListMerchants(f repositories.MerchantFilter) ([]models.Merchant, int64, error)
	GetMerchant(id string) (*models.Merchant, error)
	ApproveMerchant(actor audit.Actor, merchantID string) (*models.Merchant, error)
	SuspendMerchant(actor audit.Actor, merchantID, reason string) (*models.Merchant, error)
	SetCommissionRate(actor audit.Actor, merchantID string, rate float64) (*models.Merchant, error)

	ListOverdue(f repositories.TransactionFilter) ([]models.Transaction, int64, error)
	ListAuditLogs(f repositories.AuditFilter) ([]models.AuditLog, int64, error)
}

type service struct {
	customers   repositories.CustomerRepository
	merchants   repositories.MerchantRepository
	txs         repositories.TransactionRepository
	settlements repositories.SettlementRepository
	audits      repositories.AuditRepository
	auditor     audit.Recorder
	broadcast   realtime.Broadcaster
	rules       config.BusinessRules
}

func NewService(
	customers repositories.CustomerRepository,
	merchants repositories.MerchantRepository,
	txs repositories.TransactionRepository,
	settlements repositories.SettlementRepository,
	audits repositories.AuditRepository,
	auditor audit.Recorder,
	broadcast realtime.Broadcaster,
	rules config.BusinessRules,
) Service {
	if customers == nil {
		panic("admin: customer repository is required")
	}
	if merchants == nil {
		panic("admin: merchant repository is required")
	}
	if txs == nil {
		panic("admin: transaction repository is required")
	}
	if settlements == nil {
		panic("admin: settlement repository is required")
	}
	if audits == nil {
		panic("admin: audit repository is required")
	}
	if auditor == nil {
		auditor = audit.NoopRecorder{}
	}
	if broadcast == nil {
		broadcast = realtime.NoopBroadcaster{}
	}
	return &service{
		customers:   customers,
		merchants:   merchants,
		txs:         txs,
		settlements: settlements,
		audits:      audits,
		auditor:     auditor,
		broadcast:   broadcast,
		rules:       rules,
	}
}

// Dashboard is assembled from count queries; the listings themselves are
// discarded, only totals are kept.
func (s *service) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if _, stats.TotalCustomers, err = s.customers.List(repositories.CustomerFilter{Limit: 1}); err != nil {
		return nil, apperr.Internal("failed to count customers", err)
	}
	if _, stats.ActiveCustomers, err = s.customers.List(repositories.CustomerFilter{Status: models.CustomerStatusActive, Limit: 1}); err != nil {
		return nil, apperr.Internal("failed to count active customers", err)
	}
	if _, stats.TotalMerchants, err = s.merchants.List(repositories.MerchantFilter{Limit: 1}); err != nil {
		return nil, apperr.Internal("failed to count merchants", err)
	}
	if _, stats.PendingMerchants, err = s.merchants.List(repositories.MerchantFilter{Status: models.MerchantStatusPending, Limit: 1}); err != nil {
		return nil, apperr.Internal("failed to count pending merchants", err)
	}
	if _, stats.PendingSettlements, err = s.settlements.List(repositories.SettlementFilter{Status: models.SettlementStatusPending, Limit: 1}); err != nil {
		return nil, apperr.Internal("failed to count pending settlements", err)
	}

	overdue, total, err := s.txs.ListOverdue(repositories.TransactionFilter{Limit: 1000})
	if err != nil {
		return nil, apperr.Internal("failed to list overdue transactions", err)
	}
	stats.OverdueCount = total
	for i := range overdue {
		stats.OverdueExposure += overdue[i].RemainingAmount()
	}

	if _, confirmed, err := s.txs.ListAll(repositories.TransactionFilter{Status: models.TransactionStatusConfirmed, Limit: 1}); err == nil {
		stats.OpenTransactions = confirmed + total
	}
	return stats, nil
}

func (s *service) ListCustomers(f repositories.CustomerFilter) ([]models.Customer, int64, error) {
	customers, total, err := s.customers.List(f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list customers", err)
	}
	return customers, total, nil
}

func (s *service) GetCustomer(id string) (*models.Customer, error) {
	customer, err := s.customers.GetByID(id)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, apperr.Internal("failed to load customer", err)
	}
	return customer, nil
}

func (s *service) SetCustomerStatus(actor audit.Actor, customerID, status, reason string) (*models.Customer, error) {
	switch status {
	case models.CustomerStatusActive, models.CustomerStatusSuspended, models.CustomerStatusBlocked:
	default:
		return nil, apperr.Validation("unknown customer status %q", status)
	}

	customer, err := s.GetCustomer(customerID)
	if err != nil {
		return nil, err
	}
	if customer.Status == status {
		return nil, apperr.Conflict("customer is already %s", status)
	}

	oldStatus := customer.Status
	customer.Status = status
	if err := s.customers.Update(customer); err != nil {
		return nil, apperr.Internal("failed to update customer status", err)
	}

	s.auditor.Record(actor, "customer_status_changed", "customer", customer.ID,
		models.JSON{"status": oldStatus},
		models.JSON{"status": status, "reason": reason})
	return customer, nil
}

func (s *service) ListMerchants(f repositories.MerchantFilter) ([]models.Merchant, int64, error) {
	merchants, total, err := s.merchants.List(f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list merchants", err)
	}
	return merchants, total, nil
}

func (s *service) GetMerchant(id string) (*models.Merchant, error) {
	merchant, err := s.merchants.GetByID(id)
	if err != nil {
		if err == repositories.ErrMerchantNotFound {
			return nil, apperr.NotFound("merchant not found")
		}
		return nil, apperr.Internal("failed to load merchant", err)
	}
	return merchant, nil
}

func (s *service) ApproveMerchant(actor audit.Actor, merchantID string) (*models.Merchant, error) {
	merchant, err := s.GetMerchant(merchantID)
	if err != nil {
		return nil, err
	}
	if merchant.Status != models.MerchantStatusPending {
		return nil, apperr.Conflict("merchant is %s and cannot be approved", merchant.Status)
	}

	now := time.Now().UTC()
	merchant.Status = models.MerchantStatusActive
	merchant.ApprovedBy = &actor.ID
	merchant.ApprovedAt = &now
	if err := s.merchants.Update(merchant); err != nil {
		return nil, apperr.Internal("failed to approve merchant", err)
	}

	s.auditor.Record(actor, "merchant_approved", "merchant", merchant.ID,
		models.JSON{"status": models.MerchantStatusPending},
		models.JSON{"status": merchant.Status})
	s.broadcast.Emit(realtime.MerchantRoom(merchant.ID), realtime.EventMerchantApproved, map[string]interface{}{
		"merchant_id": merchant.ID,
	})
	return merchant, nil
}

func (s *service) SuspendMerchant(actor audit.Actor, merchantID, reason string) (*models.Merchant, error) {
	if reason == "" {
		return nil, apperr.Validation("suspension reason is required")
	}

	merchant, err := s.GetMerchant(merchantID)
	if err != nil {
		return nil, err
	}
	if merchant.Status == models.MerchantStatusSuspended {
		return nil, apperr.Conflict("merchant is already suspended")
	}

	oldStatus := merchant.Status
	merchant.Status = models.MerchantStatusSuspended
	merchant.StatusReason = reason
	if err := s.merchants.Update(merchant); err != nil {
		return nil, apperr.Internal("failed to suspend merchant", err)
	}

	s.auditor.Record(actor, "merchant_suspended", "merchant", merchant.ID,
		models.JSON{"status": oldStatus},
		models.JSON{"status": merchant.Status, "reason": reason})
	return merchant, nil
}

func (s *service) SetCommissionRate(actor audit.Actor, merchantID string, rate float64) (*models.Merchant, error) {
	if rate < 0 || rate > 100 {
		return nil, apperr.Validation("commission rate must be between 0 and 100")
	}

	merchant, err := s.GetMerchant(merchantID)
	if err != nil {
		return nil, err
	}

	oldRate := merchant.CommissionRate
	merchant.CommissionRate = rate
	if err := s.merchants.Update(merchant); err != nil {
		return nil, apperr.Internal("failed to update commission rate", err)
	}

	s.auditor.Record(actor, "commission_rate_changed", "merchant", merchant.ID,
		models.JSON{"commission_rate": oldRate},
		models.JSON{"commission_rate": rate})
	return merchant, nil
}

func (s *service) ListOverdue(f repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	txs, total, err := s.txs.ListOverdue(f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list overdue transactions", err)
	}
	return txs, total, nil
}

func (s *service) ListAuditLogs(f repositories.AuditFilter) ([]models.AuditLog, int64, error) {
	logs, total, err := s.audits.List(f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list audit logs", err)
	}
	return logs, total, nil
}
