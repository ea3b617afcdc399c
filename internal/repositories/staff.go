package repositories

import (
	"errors"
	"fmt"

	"bariq/internal/models"
	"bariq/internal/services/access"

	"gorm.io/gorm"
)

// ErrStaffNotFound is returned when no staff member matches the lookup.
var ErrStaffNotFound = errors.New("staff member not found")

// StaffRepository provides access to merchant staff records.
type StaffRepository interface {
	Create(user *models.MerchantUser) error
	GetByID(id string) (*models.MerchantUser, error)
	GetActiveByID(id string) (*models.MerchantUser, error)
	GetByEmail(email string) (*models.MerchantUser, error)
	ListScoped(merchantID string, scope access.Scope) ([]models.MerchantUser, error)
	Update(user *models.MerchantUser) error
}

type staffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(user *models.MerchantUser) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}
	return nil
}

func (r *staffRepository) GetByID(id string) (*models.MerchantUser, error) {
	var user models.MerchantUser
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &user, nil
}

func (r *staffRepository) GetActiveByID(id string) (*models.MerchantUser, error) {
	var user models.MerchantUser
	if err := r.db.First(&user, "id = ? AND is_active = true", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &user, nil
}

func (r *staffRepository) GetByEmail(email string) (*models.MerchantUser, error) {
	var user models.MerchantUser
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &user, nil
}

// ListScoped lists staff of a merchant visible within the given scope.
func (r *staffRepository) ListScoped(merchantID string, scope access.Scope) ([]models.MerchantUser, error) {
	if scope.Empty() && !scope.All {
		return nil, nil
	}

	q := r.db.Where("merchant_id = ?", merchantID)
	switch {
	case scope.All:
		// unrestricted within the merchant
	case scope.RegionID != "":
		q = q.Where("region_id = ?", scope.RegionID)
	case len(scope.BranchIDs) > 0:
		q = q.Where("branch_id IN ?", scope.BranchIDs)
	default:
		return nil, nil
	}

	var users []models.MerchantUser
	if err := q.Order("full_name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return users, nil
}

func (r *staffRepository) Update(user *models.MerchantUser) error {
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update staff member: %w", err)
	}
	return nil
}
