package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentIsLocked(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no stamp means unlocked", func(t *testing.T) {
		p := Payment{}
		assert.False(t, p.IsLocked(now, DefaultLockTimeout))
	})

	t.Run("fresh stamp is held", func(t *testing.T) {
		stamp := now.Add(-30 * time.Second)
		p := Payment{ProcessingLockedAt: &stamp}
		assert.True(t, p.IsLocked(now, DefaultLockTimeout))
	})

	t.Run("expired stamp is not held", func(t *testing.T) {
		stamp := now.Add(-61 * time.Second)
		p := Payment{ProcessingLockedAt: &stamp}
		assert.False(t, p.IsLocked(now, DefaultLockTimeout))
	})

	t.Run("stamp at exactly the timeout boundary is not held", func(t *testing.T) {
		stamp := now.Add(-DefaultLockTimeout)
		p := Payment{ProcessingLockedAt: &stamp}
		assert.False(t, p.IsLocked(now, DefaultLockTimeout))
	})
}

func TestRoleHierarchy(t *testing.T) {
	assert.True(t, RoleOwner.Outranks(RoleRegionManager))
	assert.True(t, RoleExecutiveManager.Outranks(RoleBranchManager))
	assert.True(t, RoleRegionManager.Outranks(RoleBranchManager))
	assert.True(t, RoleBranchManager.Outranks(RoleCashier))

	// owner and executive manager share the top level
	assert.False(t, RoleOwner.Outranks(RoleExecutiveManager))
	assert.False(t, RoleExecutiveManager.Outranks(RoleOwner))

	assert.True(t, RoleOwner.IsTopLevel())
	assert.True(t, RoleExecutiveManager.IsTopLevel())
	assert.False(t, RoleRegionManager.IsTopLevel())

	assert.True(t, RoleCashier.Valid())
	assert.False(t, Role("supervisor").Valid())
}
