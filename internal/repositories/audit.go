package repositories

import (
	"fmt"

	"bariq/internal/models"

	"gorm.io/gorm"
)

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActorType  string
	Action     string
	EntityType string
	EntityID   string
	Limit      int
	Offset     int
}

// AuditRepository appends and lists immutable audit records.
type AuditRepository interface {
	Append(entry *models.AuditLog) error
	List(f AuditFilter) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(entry *models.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(f AuditFilter) ([]models.AuditLog, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	q := r.db.Model(&models.AuditLog{})
	if f.ActorType != "" {
		q = q.Where("actor_type = ?", f.ActorType)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var entries []models.AuditLog
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, total, nil
}
