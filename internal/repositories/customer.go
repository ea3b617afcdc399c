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

// ErrCustomerNotFound is returned when no customer matches the lookup.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Status string
	City   string
	Search string
	Limit  int
	Offset int
}

// CustomerRepository provides access to customer records.
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByID(id string) (*models.Customer, error)
	GetByNationalID(nationalID string) (*models.Customer, error)
	GetByPhone(phone string) (*models.Customer, error)
	List(f CustomerFilter) ([]models.Customer, int64, error)
	Update(customer *models.Customer) error
}

type customerRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewCustomerRepository creates a customer repository. The cache is
// optional; a nil cache disables profile caching.
func NewCustomerRepository(db *gorm.DB, cacheService *cache.CacheService) CustomerRepository {
	return &customerRepository{db: db, cache: cacheService}
}

func (r *customerRepository) Create(customer *models.Customer) error {
	if err := r.db.Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	r.cacheCustomer(customer)
	return nil
}

func (r *customerRepository) GetByID(id string) (*models.Customer, error) {
	if r.cache != nil {
		key := r.cache.GenerateKey("customer", "id", id)
		if customer, err := r.cache.GetCustomer(context.Background(), key); err == nil {
			return customer, nil
		}
	}

	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	r.cacheCustomer(&customer)
	return &customer, nil
}

func (r *customerRepository) GetByNationalID(nationalID string) (*models.Customer, error) {
	if r.cache != nil {
		key := r.cache.GenerateKey("customer", "national_id", nationalID)
		if customer, err := r.cache.GetCustomer(context.Background(), key); err == nil {
			return customer, nil
		}
	}

	var customer models.Customer
	if err := r.db.First(&customer, "national_id = ?", nationalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	r.cacheCustomer(&customer)
	return &customer, nil
}

func (r *customerRepository) GetByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "phone = ?", phone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

func (r *customerRepository) List(f CustomerFilter) ([]models.Customer, int64, error) {
	q := r.db.Model(&models.Customer{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("full_name ILIKE ? OR national_id LIKE ? OR phone LIKE ?", pattern, f.Search+"%", f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var customers []models.Customer
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepository) Update(customer *models.Customer) error {
	if err := r.db.Save(customer).Error; err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidateCustomer(context.Background(), customer); err != nil {
			log.Printf("failed to invalidate customer cache: %v", err)
		}
	}
	return nil
}

func (r *customerRepository) cacheCustomer(customer *models.Customer) {
	if r.cache == nil {
		return
	}
	if err := r.cache.CacheCustomer(context.Background(), customer); err != nil {
		log.Printf("failed to cache customer: %v", err)
	}
}
