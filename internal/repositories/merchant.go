package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bariq/internal/models"
	"bariq/internal/repositories/cache"

	"gorm.io/gorm"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrRegionNotFound   = errors.New("region not found")
)

// MerchantFilter narrows merchant listings.
type MerchantFilter struct {
	Status       string
	BusinessType string
	Search       string
	Limit        int
	Offset       int
}

// MerchantRepository provides access to merchants and their branch layout.
type MerchantRepository interface {
	Create(merchant *models.Merchant) error
	GetByID(id string) (*models.Merchant, error)
	GetByEmail(email string) (*models.Merchant, error)
	List(f MerchantFilter) ([]models.Merchant, int64, error)
	Update(merchant *models.Merchant) error

	CreateBranch(branch *models.Branch) error
	GetBranch(id string) (*models.Branch, error)
	ListBranches(merchantID string) ([]models.Branch, error)
	UpdateBranch(branch *models.Branch) error

	CreateRegion(region *models.Region) error
	GetRegion(id string) (*models.Region, error)
	ListRegions(merchantID string) ([]models.Region, error)
}

type merchantRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewMerchantRepository(db *gorm.DB, cacheService *cache.CacheService) MerchantRepository {
	return &merchantRepository{db: db, cache: cacheService}
}

func (r *merchantRepository) Create(merchant *models.Merchant) error {
	if err := r.db.Create(merchant).Error; err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

func (r *merchantRepository) GetByID(id string) (*models.Merchant, error) {
	if r.cache != nil {
		if merchant, err := r.cache.GetMerchant(context.Background(), id); err == nil {
			return merchant, nil
		}
	}

	var merchant models.Merchant
	if err := r.db.First(&merchant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.CacheMerchant(context.Background(), &merchant); err != nil {
			log.Printf("failed to cache merchant: %v", err)
		}
	}
	return &merchant, nil
}

func (r *merchantRepository) GetByEmail(email string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.First(&merchant, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

func (r *merchantRepository) List(f MerchantFilter) ([]models.Merchant, int64, error) {
	q := r.db.Model(&models.Merchant{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BusinessType != "" {
		q = q.Where("business_type = ?", f.BusinessType)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("name_ar ILIKE ? OR name_en ILIKE ? OR commercial_registration LIKE ?", pattern, pattern, f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count merchants: %w", err)
	}

	var merchants []models.Merchant
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&merchants).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list merchants: %w", err)
	}
	return merchants, total, nil
}

func (r *merchantRepository) Update(merchant *models.Merchant) error {
	if err := r.db.Save(merchant).Error; err != nil {
		return fmt.Errorf("failed to update merchant: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidateMerchant(context.Background(), merchant.ID); err != nil {
			log.Printf("failed to invalidate merchant cache: %v", err)
		}
	}
	return nil
}

func (r *merchantRepository) CreateBranch(branch *models.Branch) error {
	if err := r.db.Create(branch).Error; err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

func (r *merchantRepository) GetBranch(id string) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.First(&branch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &branch, nil
}

func (r *merchantRepository) ListBranches(merchantID string) ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.Where("merchant_id = ?", merchantID).Order("name").Find(&branches).Error; err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

func (r *merchantRepository) UpdateBranch(branch *models.Branch) error {
	if err := r.db.Save(branch).Error; err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	return nil
}

func (r *merchantRepository) CreateRegion(region *models.Region) error {
	if err := r.db.Create(region).Error; err != nil {
		return fmt.Errorf("failed to create region: %w", err)
	}
	return nil
}

func (r *merchantRepository) GetRegion(id string) (*models.Region, error) {
	var region models.Region
	if err := r.db.First(&region, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return &region, nil
}

func (r *merchantRepository) ListRegions(merchantID string) ([]models.Region, error) {
	var regions []models.Region
	if err := r.db.Where("merchant_id = ?", merchantID).Order("name").Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return regions, nil
}
