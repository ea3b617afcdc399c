package repositories

import (
	"errors"
	"fmt"

	"bariq/internal/models"

	"gorm.io/gorm"
)

// ErrAdminNotFound is returned when no admin user matches the lookup.
var ErrAdminNotFound = errors.New("admin user not found")

// AdminRepository provides access to platform admin accounts.
type AdminRepository interface {
	Create(admin *models.AdminUser) error
	GetByID(id string) (*models.AdminUser, error)
	GetByEmail(email string) (*models.AdminUser, error)
	List() ([]models.AdminUser, error)
	Update(admin *models.AdminUser) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(admin *models.AdminUser) error {
	if err := r.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

func (r *adminRepository) GetByID(id string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.First(&admin, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}
	return &admin, nil
}

func (r *adminRepository) List() ([]models.AdminUser, error) {
	var admins []models.AdminUser
	if err := r.db.Order("created_at").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admin users: %w", err)
	}
	return admins, nil
}

func (r *adminRepository) Update(admin *models.AdminUser) error {
	if err := r.db.Save(admin).Error; err != nil {
		return fmt.Errorf("failed to update admin user: %w", err)
	}
	return nil
}
