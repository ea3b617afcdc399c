package models

import (
	"time"
)

// AdminUser is a platform operator overseeing customers, merchants and
// settlements.
type AdminUser struct {
	ID       string `gorm:"type:varchar(36);primarykey"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password string `gorm:"type:varchar(255);not null"`
	FullName string `gorm:"type:varchar(200);not null"`
	Role     string `gorm:"type:varchar(30);not null;default:'admin'"`

	IsActive    bool `gorm:"not null;default:true"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
