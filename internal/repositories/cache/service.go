// Package cache provides a Redis-backed cache for entity profiles.
// Derived credit balances are deliberately never cached: the transaction
// table is the single source of truth for credit exposure.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bariq/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Customer caching
func (s *CacheService) CacheCustomer(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return errors.New("cannot cache nil customer")
	}

	keys := []string{
		s.GenerateKey("customer", "id", customer.ID),
		s.GenerateKey("customer", "national_id", customer.NationalID),
	}
	for _, key := range keys {
		if err := s.Set(ctx, key, customer); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheService) GetCustomer(ctx context.Context, key string) (*models.Customer, error) {
	var customer models.Customer
	found, err := s.Get(ctx, key, &customer)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return &customer, nil
}

func (s *CacheService) InvalidateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return nil
	}
	return s.Delete(ctx,
		s.GenerateKey("customer", "id", customer.ID),
		s.GenerateKey("customer", "national_id", customer.NationalID),
	)
}

// Merchant caching
func (s *CacheService) CacheMerchant(ctx context.Context, merchant *models.Merchant) error {
	if merchant == nil {
		return errors.New("cannot cache nil merchant")
	}
	return s.Set(ctx, s.GenerateKey("merchant", "id", merchant.ID), merchant)
}

func (s *CacheService) GetMerchant(ctx context.Context, merchantID string) (*models.Merchant, error) {
	var merchant models.Merchant
	found, err := s.Get(ctx, s.GenerateKey("merchant", "id", merchantID), &merchant)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return &merchant, nil
}

func (s *CacheService) InvalidateMerchant(ctx context.Context, merchantID string) error {
	return s.Delete(ctx, s.GenerateKey("merchant", "id", merchantID))
}

// Ping reports whether Redis is reachable.
func (s *CacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// FlushAll clears the whole cache, used on startup.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the underlying Redis connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
