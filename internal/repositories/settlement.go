package repositories

import (
	"errors"
	"fmt"

	"bariq/internal/models"

	"gorm.io/gorm"
)

// ErrSettlementNotFound is returned when no settlement matches the lookup.
var ErrSettlementNotFound = errors.New("settlement not found")

// SettlementFilter narrows settlement listings.
type SettlementFilter struct {
	Status     string
	MerchantID string
	Limit      int
	Offset     int
}

// SettlementRepository provides access to settlement records.
type SettlementRepository interface {
	// CreateWithTransactions persists the settlement and links the given
	// transactions to it in one storage transaction.
	CreateWithTransactions(settlement *models.Settlement, transactionIDs []string) error
	GetByID(id string) (*models.Settlement, error)
	List(f SettlementFilter) ([]models.Settlement, int64, error)
	Update(settlement *models.Settlement) error
	ListTransactions(settlementID string) ([]models.Transaction, error)
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) CreateWithTransactions(settlement *models.Settlement, transactionIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(settlement).Error; err != nil {
			return fmt.Errorf("failed to create settlement: %w", err)
		}
		if len(transactionIDs) > 0 {
			err := tx.Model(&models.Transaction{}).
				Where("id IN ?", transactionIDs).
				Update("settlement_id", settlement.ID).Error
			if err != nil {
				return fmt.Errorf("failed to link transactions: %w", err)
			}
		}
		return nil
	})
}

func (r *settlementRepository) GetByID(id string) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := r.db.First(&settlement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return &settlement, nil
}

func (r *settlementRepository) List(f SettlementFilter) ([]models.Settlement, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	q := r.db.Model(&models.Settlement{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MerchantID != "" {
		q = q.Where("merchant_id = ?", f.MerchantID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	var settlements []models.Settlement
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&settlements).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	return settlements, total, nil
}

func (r *settlementRepository) Update(settlement *models.Settlement) error {
	if err := r.db.Save(settlement).Error; err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	return nil
}

func (r *settlementRepository) ListTransactions(settlementID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.db.Where("settlement_id = ?", settlementID).Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list settlement transactions: %w", err)
	}
	return txs, nil
}
