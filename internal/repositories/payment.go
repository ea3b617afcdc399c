package repositories

import (
	"errors"
	"fmt"
	"time"

	"bariq/internal/models"

	"gorm.io/gorm"
)

// ErrPaymentNotFound is returned when no payment matches the lookup.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository provides access to payment records and the advisory
// processing lock.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	Update(payment *models.Payment) error
	ListForCustomer(customerID string, limit, offset int) ([]models.Payment, int64, error)

	// SaveWithTransaction persists the payment and the updated transaction
	// row in one storage transaction; both commit or neither does.
	SaveWithTransaction(payment *models.Payment, tx *models.Transaction) error

	// AcquireProcessingLock stamps the payment's processing lock through a
	// conditional update restricted to rows where no unexpired lock is
	// held. The check-and-stamp is atomic at the storage layer; a plain
	// read-then-write would leave a race window between two requests.
	AcquireProcessingLock(paymentID string, timeout time.Duration) (bool, error)
	ReleaseProcessingLock(paymentID string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(payment *models.Payment) error {
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) Update(payment *models.Payment) error {
	if err := r.db.Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListForCustomer(customerID string, limit, offset int) ([]models.Payment, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.db.Model(&models.Payment{}).Where("customer_id = ?", customerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []models.Payment
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepository) SaveWithTransaction(payment *models.Payment, tx *models.Transaction) error {
	return r.db.Transaction(func(dbTx *gorm.DB) error {
		if err := dbTx.Save(payment).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := dbTx.Save(tx).Error; err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})
}

func (r *paymentRepository) AcquireProcessingLock(paymentID string, timeout time.Duration) (bool, error) {
	now := time.Now().UTC()
	res := r.db.Model(&models.Payment{}).
		Where("id = ? AND (processing_locked_at IS NULL OR processing_locked_at <= ?)", paymentID, now.Add(-timeout)).
		Update("processing_locked_at", now)
	if res.Error != nil {
		return false, fmt.Errorf("failed to acquire processing lock: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) ReleaseProcessingLock(paymentID string) error {
	err := r.db.Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("processing_locked_at", nil).Error
	if err != nil {
		return fmt.Errorf("failed to release processing lock: %w", err)
	}
	return nil
}
