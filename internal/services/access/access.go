// Package access resolves what merchant staff may see or act upon, from
// their role and static branch/region assignment. Everything here is a
// pure function of the actor and the merchant's branch layout; queries
// apply the resulting Scope at the repository layer.
package access

import (
	"bariq/internal/models"
)

// Scope is a resolved visibility filter over transactions.
// Exactly one of the three shapes applies: everything within the merchant,
// a bounded branch set, or a single cashier's own records. An empty,
// non-all scope matches nothing.
type Scope struct {
	All       bool
	BranchIDs []string
	RegionID  string
	CashierID string
}

// Empty reports whether the scope matches no records.
func (s Scope) Empty() bool {
	return !s.All && len(s.BranchIDs) == 0 && s.RegionID == "" && s.CashierID == ""
}

// AccessibleBranchIDs returns the branch IDs the user may query, given all
// branches of the user's merchant. The second result is true when the user
// sees every branch, in which case the slice is nil.
func AccessibleBranchIDs(user *models.MerchantUser, branches []models.Branch) ([]string, bool) {
	if user == nil {
		return nil, false
	}

	if user.Role.IsTopLevel() {
		return nil, true
	}

	switch user.Role {
	case models.RoleRegionManager:
		if user.RegionID == nil {
			return nil, false
		}
		var ids []string
		for _, b := range branches {
			if b.RegionID != nil && *b.RegionID == *user.RegionID {
				ids = append(ids, b.ID)
			}
		}
		return ids, false
	case models.RoleBranchManager:
		if user.BranchID == nil {
			return nil, false
		}
		return []string{*user.BranchID}, false
	}

	// Cashiers are scoped by authorship, not branch.
	return nil, false
}

// CanAccessBranch reports whether the user may act on the given branch.
func CanAccessBranch(user *models.MerchantUser, branch *models.Branch) bool {
	if user == nil || branch == nil {
		return false
	}
	if branch.MerchantID != user.MerchantID {
		return false
	}
	if user.Role.IsTopLevel() {
		return true
	}

	switch user.Role {
	case models.RoleRegionManager:
		return user.RegionID != nil && branch.RegionID != nil && *branch.RegionID == *user.RegionID
	case models.RoleBranchManager, models.RoleCashier:
		return user.BranchID != nil && *user.BranchID == branch.ID
	}
	return false
}

// CanAccessRegion reports whether the user may act on the given region.
func CanAccessRegion(user *models.MerchantUser, regionID string) bool {
	if user == nil || regionID == "" {
		return false
	}
	if user.Role.IsTopLevel() {
		return true
	}
	if user.Role == models.RoleRegionManager {
		return user.RegionID != nil && *user.RegionID == regionID
	}
	return false
}

// TransactionScope resolves the filter applied to transaction queries.
// Cashiers only see transactions they created; other roles see their
// accessible branches; top-level roles see the whole merchant.
func TransactionScope(user *models.MerchantUser, branches []models.Branch) Scope {
	if user == nil {
		return Scope{}
	}
	if user.Role == models.RoleCashier {
		return Scope{CashierID: user.ID}
	}
	ids, all := AccessibleBranchIDs(user, branches)
	return Scope{All: all, BranchIDs: ids}
}

// StaffScope resolves which staff records the requester may list.
func StaffScope(requester *models.MerchantUser) Scope {
	if requester == nil {
		return Scope{}
	}
	if requester.Role.IsTopLevel() {
		return Scope{All: true}
	}
	switch requester.Role {
	case models.RoleRegionManager:
		if requester.RegionID != nil {
			return Scope{RegionID: *requester.RegionID}
		}
	case models.RoleBranchManager:
		if requester.BranchID != nil {
			return Scope{BranchIDs: []string{*requester.BranchID}}
		}
	}
	return Scope{}
}

// CanManage reports whether requester may edit or deactivate target.
// The requester must outrank the target and the target must lie within
// the requester's scope. Self-access is always allowed.
func CanManage(requester, target *models.MerchantUser) bool {
	if requester == nil || target == nil {
		return false
	}
	if requester.ID == target.ID {
		return true
	}
	if requester.MerchantID != target.MerchantID {
		return false
	}
	if !requester.Role.Outranks(target.Role) {
		return false
	}

	switch requester.Role {
	case models.RoleRegionManager:
		if requester.RegionID == nil || target.RegionID == nil || *requester.RegionID != *target.RegionID {
			return false
		}
	case models.RoleBranchManager:
		if requester.BranchID == nil || target.BranchID == nil || *requester.BranchID != *target.BranchID {
			return false
		}
	}
	return true
}

// CanViewStaff reports whether requester may view target's details.
// More permissive than CanManage: peers within scope are visible.
func CanViewStaff(requester, target *models.MerchantUser) bool {
	if requester == nil || target == nil {
		return false
	}
	if requester.ID == target.ID {
		return true
	}
	if requester.MerchantID != target.MerchantID {
		return false
	}
	if requester.Role.IsTopLevel() {
		return true
	}

	switch requester.Role {
	case models.RoleRegionManager:
		return requester.RegionID != nil && target.RegionID != nil && *requester.RegionID == *target.RegionID
	case models.RoleBranchManager:
		return requester.BranchID != nil && target.BranchID != nil && *requester.BranchID == *target.BranchID
	}

	// Cashiers cannot view other staff.
	return false
}

// CanViewReports reports whether the user may open merchant reports.
func CanViewReports(user *models.MerchantUser) bool {
	return user != nil && user.Role != models.RoleCashier
}

// CanViewSettlements reports whether the user may view settlements.
func CanViewSettlements(user *models.MerchantUser) bool {
	return user != nil && user.Role != models.RoleCashier
}
