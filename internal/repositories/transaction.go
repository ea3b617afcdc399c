package repositories

import (
	"errors"
	"fmt"
	"time"

	"bariq/internal/models"
	"bariq/internal/services/access"

	"gorm.io/gorm"
)

// ErrTransactionNotFound is returned when no transaction matches the lookup.
var ErrTransactionNotFound = errors.New("transaction not found")

// openStatuses are the transaction statuses counting against a customer's
// credit limit.
var openStatuses = []string{
	models.TransactionStatusPending,
	models.TransactionStatusConfirmed,
	models.TransactionStatusOverdue,
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Status     string
	MerchantID string
	BranchID   string
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TransactionRepository provides access to the transaction ledger.
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByID(id string) (*models.Transaction, error)
	GetByReference(reference string) (*models.Transaction, error)
	Update(tx *models.Transaction) error

	ListForCustomer(customerID string, f TransactionFilter) ([]models.Transaction, int64, error)
	ListScoped(merchantID string, scope access.Scope, f TransactionFilter) ([]models.Transaction, int64, error)
	ListAll(f TransactionFilter) ([]models.Transaction, int64, error)

	// SumOpenRemaining computes the customer's used credit in SQL:
	// the sum of remaining amounts over open transactions.
	SumOpenRemaining(customerID string) (float64, error)

	// SaveReturn persists a return row and the updated transaction in one
	// storage transaction.
	SaveReturn(ret *models.TransactionReturn, tx *models.Transaction) error
	ListReturns(merchantID string, f TransactionFilter) ([]models.TransactionReturn, error)

	// MarkOverdue flips confirmed transactions past their due date to
	// overdue and reports how many rows changed.
	MarkOverdue(now time.Time) (int64, error)
	ListOverdue(f TransactionFilter) ([]models.Transaction, int64, error)

	// ListUnsettledPaid returns a merchant's paid transactions within the
	// period that are not yet linked to a settlement.
	ListUnsettledPaid(merchantID string, from, to time.Time) ([]models.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, "reference_number = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(tx *models.Transaction) error {
	if err := r.db.Save(tx).Error; err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func applyFilter(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MerchantID != "" {
		q = q.Where("merchant_id = ?", f.MerchantID)
	}
	if f.BranchID != "" {
		q = q.Where("branch_id = ?", f.BranchID)
	}
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", *f.ToDate)
	}
	return q
}

func (r *transactionRepository) page(q *gorm.DB, f TransactionFilter) ([]models.Transaction, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.Transaction
	if err := q.Order("transaction_date DESC").Limit(f.Limit).Offset(f.Offset).Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *transactionRepository) ListForCustomer(customerID string, f TransactionFilter) ([]models.Transaction, int64, error) {
	q := applyFilter(r.db.Model(&models.Transaction{}).Where("customer_id = ?", customerID), f)
	return r.page(q, f)
}

// ListScoped applies the resolved role scope on top of the merchant bound.
// An empty scope matches nothing: the caller gets an empty page, not an
// error.
func (r *transactionRepository) ListScoped(merchantID string, scope access.Scope, f TransactionFilter) ([]models.Transaction, int64, error) {
	q := r.db.Model(&models.Transaction{}).Where("merchant_id = ?", merchantID)

	switch {
	case scope.All:
		// unrestricted within the merchant
	case scope.CashierID != "":
		q = q.Where("cashier_id = ?", scope.CashierID)
	case len(scope.BranchIDs) > 0:
		q = q.Where("branch_id IN ?", scope.BranchIDs)
	default:
		return nil, 0, nil
	}

	return r.page(applyFilter(q, f), f)
}

func (r *transactionRepository) ListAll(f TransactionFilter) ([]models.Transaction, int64, error) {
	return r.page(applyFilter(r.db.Model(&models.Transaction{}), f), f)
}

func (r *transactionRepository) SumOpenRemaining(customerID string) (float64, error) {
	var used float64
	err := r.db.Model(&models.Transaction{}).
		Where("customer_id = ? AND status IN ?", customerID, openStatuses).
		Select("COALESCE(SUM(total_amount - paid_amount - returned_amount), 0)").
		Scan(&used).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum open transactions: %w", err)
	}
	return used, nil
}

func (r *transactionRepository) SaveReturn(ret *models.TransactionReturn, tx *models.Transaction) error {
	return r.db.Transaction(func(dbTx *gorm.DB) error {
		if err := dbTx.Create(ret).Error; err != nil {
			return fmt.Errorf("failed to create return: %w", err)
		}
		if err := dbTx.Save(tx).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
}

func (r *transactionRepository) ListReturns(merchantID string, f TransactionFilter) ([]models.TransactionReturn, error) {
	q := r.db.Model(&models.TransactionReturn{}).
		Joins("JOIN transactions ON transactions.id = transaction_returns.transaction_id").
		Where("transactions.merchant_id = ?", merchantID)
	if f.BranchID != "" {
		q = q.Where("transactions.branch_id = ?", f.BranchID)
	}
	if f.FromDate != nil {
		q = q.Where("transaction_returns.created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transaction_returns.created_at <= ?", *f.ToDate)
	}

	var returns []models.TransactionReturn
	if err := q.Order("transaction_returns.created_at DESC").Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	return returns, nil
}

func (r *transactionRepository) MarkOverdue(now time.Time) (int64, error) {
	res := r.db.Model(&models.Transaction{}).
		Where("status = ? AND due_date < ?", models.TransactionStatusConfirmed, now.UTC().Format("2006-01-02")).
		Update("status", models.TransactionStatusOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark overdue transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *transactionRepository) ListOverdue(f TransactionFilter) ([]models.Transaction, int64, error) {
	q := applyFilter(r.db.Model(&models.Transaction{}).Where("status = ?", models.TransactionStatusOverdue), f)
	return r.page(q, f)
}

func (r *transactionRepository) ListUnsettledPaid(merchantID string, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.
		Where("merchant_id = ? AND status = ? AND settlement_id IS NULL", merchantID, models.TransactionStatusPaid).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled transactions: %w", err)
	}
	return txs, nil
}
