package repositories

import (
	"errors"
	"fmt"

	"bariq/internal/models"

	"gorm.io/gorm"
)

// ErrCreditRequestNotFound is returned when no request matches the lookup.
var ErrCreditRequestNotFound = errors.New("credit limit request not found")

// CreditRequestRepository provides access to credit limit requests.
type CreditRequestRepository interface {
	Create(req *models.CreditLimitRequest) error
	GetByID(id string) (*models.CreditLimitRequest, error)
	ListByCustomer(customerID string) ([]models.CreditLimitRequest, error)
	List(status string, limit, offset int) ([]models.CreditLimitRequest, int64, error)
	Update(req *models.CreditLimitRequest) error

	// ApplyDecision persists the decided request and, on approval, the
	// customer's new credit limit in one storage transaction.
	ApplyDecision(req *models.CreditLimitRequest, customer *models.Customer) error
}

type creditRequestRepository struct {
	db *gorm.DB
}

func NewCreditRequestRepository(db *gorm.DB) CreditRequestRepository {
	return &creditRequestRepository{db: db}
}

func (r *creditRequestRepository) Create(req *models.CreditLimitRequest) error {
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create credit request: %w", err)
	}
	return nil
}

func (r *creditRequestRepository) GetByID(id string) (*models.CreditLimitRequest, error) {
	var req models.CreditLimitRequest
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCreditRequestNotFound
		}
		return nil, fmt.Errorf("failed to get credit request: %w", err)
	}
	return &req, nil
}

func (r *creditRequestRepository) ListByCustomer(customerID string) ([]models.CreditLimitRequest, error) {
	var reqs []models.CreditLimitRequest
	if err := r.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list credit requests: %w", err)
	}
	return reqs, nil
}

func (r *creditRequestRepository) List(status string, limit, offset int) ([]models.CreditLimitRequest, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.db.Model(&models.CreditLimitRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count credit requests: %w", err)
	}

	var reqs []models.CreditLimitRequest
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list credit requests: %w", err)
	}
	return reqs, total, nil
}

func (r *creditRequestRepository) Update(req *models.CreditLimitRequest) error {
	if err := r.db.Save(req).Error; err != nil {
		return fmt.Errorf("failed to update credit request: %w", err)
	}
	return nil
}

func (r *creditRequestRepository) ApplyDecision(req *models.CreditLimitRequest, customer *models.Customer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(req).Error; err != nil {
			return fmt.Errorf("failed to save credit request: %w", err)
		}
		if customer != nil {
			if err := tx.Save(customer).Error; err != nil {
				return fmt.Errorf("failed to save customer: %w", err)
			}
		}
		return nil
	})
}
