package models

import (
	"time"
)

// AuditLog is an immutable record of a mutating admin or staff action,
// with before/after snapshots of the touched entity.
type AuditLog struct {
	ID string `gorm:"type:varchar(36);primarykey"`

	ActorType  string `gorm:"type:varchar(20);not null;index"`
	ActorID    string `gorm:"type:varchar(36)"`
	ActorEmail string `gorm:"type:varchar(255)"`
	ActorIP    string `gorm:"type:varchar(45)"`

	Action     string `gorm:"type:varchar(100);not null;index"`
	EntityType string `gorm:"type:varchar(50);index"`
	EntityID   string `gorm:"type:varchar(36)"`

	OldValues JSON `gorm:"type:jsonb"`
	NewValues JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;index"`
}
