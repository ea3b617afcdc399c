package access

import (
	"testing"

	"bariq/internal/models"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func testBranches() []models.Branch {
	return []models.Branch{
		{ID: "b1", MerchantID: "m1", RegionID: strptr("r1")},
		{ID: "b2", MerchantID: "m1", RegionID: strptr("r1")},
		{ID: "b3", MerchantID: "m1", RegionID: strptr("r2")},
		{ID: "b4", MerchantID: "m1"},
	}
}

func TestAccessibleBranchIDs(t *testing.T) {
	branches := testBranches()

	tests := []struct {
		name    string
		user    *models.MerchantUser
		wantIDs []string
		wantAll bool
	}{
		{
			name:    "owner sees all branches",
			user:    &models.MerchantUser{ID: "u1", MerchantID: "m1", Role: models.RoleOwner},
			wantAll: true,
		},
		{
			name:    "executive manager sees all branches",
			user:    &models.MerchantUser{ID: "u2", MerchantID: "m1", Role: models.RoleExecutiveManager},
			wantAll: true,
		},
		{
			name:    "region manager sees branches of their region",
			user:    &models.MerchantUser{ID: "u3", MerchantID: "m1", Role: models.RoleRegionManager, RegionID: strptr("r1")},
			wantIDs: []string{"b1", "b2"},
		},
		{
			name: "region manager without region sees nothing",
			user: &models.MerchantUser{ID: "u4", MerchantID: "m1", Role: models.RoleRegionManager},
		},
		{
			name:    "branch manager sees their branch only",
			user:    &models.MerchantUser{ID: "u5", MerchantID: "m1", Role: models.RoleBranchManager, BranchID: strptr("b3")},
			wantIDs: []string{"b3"},
		},
		{
			name: "cashier has no branch scope",
			user: &models.MerchantUser{ID: "u6", MerchantID: "m1", Role: models.RoleCashier, BranchID: strptr("b1")},
		},
		{
			name: "nil user sees nothing",
			user: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, all := AccessibleBranchIDs(tt.user, branches)
			assert.Equal(t, tt.wantAll, all)
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCanAccessBranch(t *testing.T) {
	branches := testBranches()
	b1, b3 := &branches[0], &branches[2]
	otherMerchant := &models.Branch{ID: "x1", MerchantID: "m2"}

	owner := &models.MerchantUser{ID: "u1", MerchantID: "m1", Role: models.RoleOwner}
	regionMgr := &models.MerchantUser{ID: "u3", MerchantID: "m1", Role: models.RoleRegionManager, RegionID: strptr("r1")}
	branchMgr := &models.MerchantUser{ID: "u5", MerchantID: "m1", Role: models.RoleBranchManager, BranchID: strptr("b1")}

	assert.True(t, CanAccessBranch(owner, b1))
	assert.True(t, CanAccessBranch(owner, b3))
	assert.False(t, CanAccessBranch(owner, otherMerchant))

	assert.True(t, CanAccessBranch(regionMgr, b1))
	assert.False(t, CanAccessBranch(regionMgr, b3))

	assert.True(t, CanAccessBranch(branchMgr, b1))
	assert.False(t, CanAccessBranch(branchMgr, b3))
}

func TestTransactionScope(t *testing.T) {
	branches := testBranches()

	t.Run("cashier scoped by authorship", func(t *testing.T) {
		cashier := &models.MerchantUser{ID: "u6", MerchantID: "m1", Role: models.RoleCashier, BranchID: strptr("b1")}
		scope := TransactionScope(cashier, branches)
		assert.Equal(t, "u6", scope.CashierID)
		assert.False(t, scope.All)
		assert.Empty(t, scope.BranchIDs)
	})

	t.Run("owner unrestricted", func(t *testing.T) {
		owner := &models.MerchantUser{ID: "u1", MerchantID: "m1", Role: models.RoleOwner}
		scope := TransactionScope(owner, branches)
		assert.True(t, scope.All)
	})

	t.Run("branch manager bounded", func(t *testing.T) {
		mgr := &models.MerchantUser{ID: "u5", MerchantID: "m1", Role: models.RoleBranchManager, BranchID: strptr("b2")}
		scope := TransactionScope(mgr, branches)
		assert.Equal(t, []string{"b2"}, scope.BranchIDs)
		assert.False(t, scope.All)
	})

	t.Run("nil user matches nothing", func(t *testing.T) {
		scope := TransactionScope(nil, branches)
		assert.True(t, scope.Empty())
	})
}

func TestCanManage(t *testing.T) {
	owner := &models.MerchantUser{ID: "owner", MerchantID: "m1", Role: models.RoleOwner}
	execMgr := &models.MerchantUser{ID: "exec", MerchantID: "m1", Role: models.RoleExecutiveManager}
	regionMgr := &models.MerchantUser{ID: "rm", MerchantID: "m1", Role: models.RoleRegionManager, RegionID: strptr("r1")}
	branchMgr := &models.MerchantUser{ID: "bm", MerchantID: "m1", Role: models.RoleBranchManager, BranchID: strptr("b1"), RegionID: strptr("r1")}
	cashier := &models.MerchantUser{ID: "c1", MerchantID: "m1", Role: models.RoleCashier, BranchID: strptr("b1"), RegionID: strptr("r1")}
	otherBranchCashier := &models.MerchantUser{ID: "c2", MerchantID: "m1", Role: models.RoleCashier, BranchID: strptr("b2"), RegionID: strptr("r2")}

	assert.True(t, CanManage(owner, cashier))
	assert.True(t, CanManage(owner, regionMgr))

	// equal rank cannot manage each other
	assert.False(t, CanManage(execMgr, owner))
	assert.False(t, CanManage(owner, execMgr))

	// region manager bounded by region
	assert.True(t, CanManage(regionMgr, branchMgr))
	assert.True(t, CanManage(regionMgr, cashier))
	assert.False(t, CanManage(regionMgr, otherBranchCashier))

	// branch manager bounded by branch
	assert.True(t, CanManage(branchMgr, cashier))
	assert.False(t, CanManage(branchMgr, otherBranchCashier))

	// cashiers outrank no one
	assert.False(t, CanManage(cashier, otherBranchCashier))

	// self-access always allowed
	assert.True(t, CanManage(cashier, cashier))

	// cross-merchant never allowed
	foreign := &models.MerchantUser{ID: "f1", MerchantID: "m2", Role: models.RoleCashier}
	assert.False(t, CanManage(owner, foreign))
}

func TestCanViewStaff(t *testing.T) {
	owner := &models.MerchantUser{ID: "owner", MerchantID: "m1", Role: models.RoleOwner}
	regionMgr := &models.MerchantUser{ID: "rm", MerchantID: "m1", Role: models.RoleRegionManager, RegionID: strptr("r1")}
	peerRegionMgr := &models.MerchantUser{ID: "rm2", MerchantID: "m1", Role: models.RoleRegionManager, RegionID: strptr("r1")}
	cashier := &models.MerchantUser{ID: "c1", MerchantID: "m1", Role: models.RoleCashier, BranchID: strptr("b1"), RegionID: strptr("r1")}

	assert.True(t, CanViewStaff(owner, cashier))
	assert.True(t, CanViewStaff(regionMgr, peerRegionMgr), "peers within scope are visible")
	assert.True(t, CanViewStaff(regionMgr, cashier))
	assert.False(t, CanViewStaff(cashier, regionMgr))
	assert.True(t, CanViewStaff(cashier, cashier))
}

func TestStaffScope(t *testing.T) {
	owner := &models.MerchantUser{ID: "owner", MerchantID: "m1", Role: models.RoleOwner}
	regionMgr := &models.MerchantUser{ID: "rm", MerchantID: "m1", Role: models.RoleRegionManager, RegionID: strptr("r1")}
	cashier := &models.MerchantUser{ID: "c1", MerchantID: "m1", Role: models.RoleCashier}

	assert.True(t, StaffScope(owner).All)
	assert.Equal(t, "r1", StaffScope(regionMgr).RegionID)
	assert.True(t, StaffScope(cashier).Empty(), "cashiers cannot list staff")
}

func TestReportAndSettlementVisibility(t *testing.T) {
	for _, role := range []models.Role{models.RoleOwner, models.RoleExecutiveManager, models.RoleRegionManager, models.RoleBranchManager} {
		u := &models.MerchantUser{Role: role}
		assert.True(t, CanViewReports(u), string(role))
		assert.True(t, CanViewSettlements(u), string(role))
	}

	cashier := &models.MerchantUser{Role: models.RoleCashier}
	assert.False(t, CanViewReports(cashier))
	assert.False(t, CanViewSettlements(cashier))
	assert.False(t, CanViewReports(nil))
}
