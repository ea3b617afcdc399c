package models

import (
	"time"
)

// Role is a merchant staff role. Roles form a fixed hierarchy used for
// every scope comparison; owner and executive manager share the top level.
type Role string

const (
	RoleOwner            Role = "owner"
	RoleExecutiveManager Role = "executive_manager"
	RoleRegionManager    Role = "region_manager"
	RoleBranchManager    Role = "branch_manager"
	RoleCashier          Role = "cashier"
)

var roleLevels = map[Role]int{
	RoleOwner:            4,
	RoleExecutiveManager: 4,
	RoleRegionManager:    3,
	RoleBranchManager:    2,
	RoleCashier:          1,
}

// Level returns the role's position in the hierarchy, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Outranks reports whether r is strictly above other in the hierarchy.
func (r Role) Outranks(other Role) bool {
	return r.Level() > other.Level()
}

// IsTopLevel reports whether the role sees all branches and regions of
// its merchant.
func (r Role) IsTopLevel() bool {
	return r == RoleOwner || r == RoleExecutiveManager
}

// MerchantUser is a staff member of a merchant. Branch and region
// assignments bound what the member may query or act upon.
type MerchantUser struct {
	ID         string  `gorm:"type:varchar(36);primarykey"`
	MerchantID string  `gorm:"type:varchar(36);not null;index"`
	BranchID   *string `gorm:"type:varchar(36);index"`
	RegionID   *string `gorm:"type:varchar(36)"`

	Email    string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password string `gorm:"type:varchar(255);not null"`

	FullName   string `gorm:"type:varchar(200);not null"`
	Phone      string `gorm:"type:varchar(20)"`
	NationalID string `gorm:"type:varchar(10)"`

	Role Role `gorm:"type:varchar(30);not null;index"`

	IsActive    bool `gorm:"not null;default:true"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
