// Package merchant manages a merchant's organisation: registration,
// branches, regions and staff. Every staff mutation is gated by the role
// hierarchy and the requester's branch or region scope.
package merchant

import (
	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/repositories"
	"bariq/internal/services/access"
	"bariq/internal/services/audit"
	"bariq/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput onboards a new merchant in pending status, together with
// its owner account.
type RegisterInput struct {
	NameAr                 string
	NameEn                 string
	CommercialRegistration string
	TaxNumber              string
	BusinessType           string
	Email                  string
	Phone                  string
	City                   string

	OwnerFullName string
	OwnerEmail    string
	OwnerPassword string
}

// StaffInput creates or updates a staff member.
type StaffInput struct {
	Email      string
	Password   string
	FullName   string
	Phone      string
	NationalID string
	Role       models.Role
	BranchID   *string
	RegionID   *string
}

// Service manages merchants and their staff.
type Service interface {
	Register(in RegisterInput) (*models.Merchant, *models.MerchantUser, error)
	Get(merchantID string) (*models.Merchant, error)
	UpdateBankDetails(actor audit.Actor, staff *models.MerchantUser, bankName, iban, holder string) (*models.Merchant, error)

	CreateBranch(staff *models.MerchantUser, name, city, address, phone string, regionID *string) (*models.Branch, error)
	ListBranches(staff *models.MerchantUser) ([]models.Branch, error)
	SetBranchActive(staff *models.MerchantUser, branchID string, active bool) (*models.Branch, error)

	CreateRegion(staff *models.MerchantUser, name string) (*models.Region, error)
	ListRegions(staff *models.MerchantUser) ([]models.Region, error)

	CreateStaff(actor audit.Actor, requester *models.MerchantUser, in StaffInput) (*models.MerchantUser, error)
	GetStaff(requester *models.MerchantUser, staffID string) (*models.MerchantUser, error)
	ListStaff(requester *models.MerchantUser) ([]models.MerchantUser, error)
	UpdateStaff(actor audit.Actor, requester *models.MerchantUser, staffID string, in StaffInput) (*models.MerchantUser, error)
	SetStaffActive(actor audit.Actor, requester *models.MerchantUser, staffID string, active bool) (*models.MerchantUser, error)
}

type service struct {
	merchants repositories.MerchantRepository
	staff     repositories.StaffRepository
	auditor   audit.Recorder
	rules     config.BusinessRules
}

func NewService(
	merchants repositories.MerchantRepository,
	staff repositories.StaffRepository,
	auditor audit.Recorder,
	rules config.BusinessRules,
) Service {
	if merchants == nil {
		panic("merchant: merchant repository is required")
	}
	if staff == nil {
		panic("merchant: staff repository is required")
	}
	if auditor == nil {
		auditor = audit.NoopRecorder{}
	}
	return &service{merchants: merchants, staff: staff, auditor: auditor, rules: rules}
}

func (s *service) Register(in RegisterInput) (*models.Merchant, *models.MerchantUser, error) {
	v := validation.New()
	v.Required("name_ar", in.NameAr)
	v.Required("commercial_registration", in.CommercialRegistration)
	v.Email("email", in.Email)
	v.Phone("phone", in.Phone)
	v.Required("owner_full_name", in.OwnerFullName)
	v.Email("owner_email", in.OwnerEmail)
	v.Password("owner_password", in.OwnerPassword)
	if !v.Valid() {
		for field, msg := range v.Errors {
			return nil, nil, apperr.Validation("%s: %s", field, msg)
		}
	}

	if _, err := s.merchants.GetByEmail(in.Email); err == nil {
		return nil, nil, apperr.Conflict("a merchant with this email already exists")
	} else if err != repositories.ErrMerchantNotFound {
		return nil, nil, apperr.Internal("failed to check merchant email", err)
	}
	if _, err := s.staff.GetByEmail(in.OwnerEmail); err == nil {
		return nil, nil, apperr.Conflict("a staff account with this email already exists")
	} else if err != repositories.ErrStaffNotFound {
		return nil, nil, apperr.Internal("failed to check owner email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperr.Internal("failed to hash password", err)
	}

	merchant := &models.Merchant{
		ID:                     uuid.NewString(),
		NameAr:                 in.NameAr,
		NameEn:                 in.NameEn,
		CommercialRegistration: in.CommercialRegistration,
		TaxNumber:              in.TaxNumber,
		BusinessType:           in.BusinessType,
		Email:                  in.Email,
		Phone:                  in.Phone,
		City:                   in.City,
		CommissionRate:         s.rules.DefaultCommissionPct,
		Status:                 models.MerchantStatusPending,
	}
	if err := s.merchants.Create(merchant); err != nil {
		return nil, nil, apperr.Internal("failed to create merchant", err)
	}

	owner := &models.MerchantUser{
		ID:         uuid.NewString(),
		MerchantID: merchant.ID,
		Email:      in.OwnerEmail,
		Password:   string(hashed),
		FullName:   in.OwnerFullName,
		Role:       models.RoleOwner,
		IsActive:   true,
	}
	if err := s.staff.Create(owner); err != nil {
		return nil, nil, apperr.Internal("failed to create owner account", err)
	}
	return merchant, owner, nil
}

func (s *service) Get(merchantID string) (*models.Merchant, error) {
	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		if err == repositories.ErrMerchantNotFound {
			return nil, apperr.NotFound("merchant not found")
		}
		return nil, apperr.Internal("failed to load merchant", err)
	}
	return merchant, nil
}

func (s *service) UpdateBankDetails(actor audit.Actor, staff *models.MerchantUser, bankName, iban, holder string) (*models.Merchant, error) {
	if !staff.Role.IsTopLevel() {
		return nil, apperr.AccessDenied("only owners and executive managers can update bank details")
	}
	if iban == "" || bankName == "" || holder == "" {
		return nil, apperr.Validation("bank name, IBAN and account holder are required")
	}

	merchant, err := s.Get(staff.MerchantID)
	if err != nil {
		return nil, err
	}

	old := models.JSON{"bank_name": merchant.BankName, "iban": merchant.IBAN}
	merchant.BankName = bankName
	merchant.IBAN = iban
	merchant.AccountHolderName = holder
	if err := s.merchants.Update(merchant); err != nil {
		return nil, apperr.Internal("failed to update bank details", err)
	}

	s.auditor.Record(actor, "bank_details_updated", "merchant", merchant.ID,
		old, models.JSON{"bank_name": bankName, "iban": iban})
	return merchant, nil
}

func (s *service) CreateBranch(staff *models.MerchantUser, name, city, address, phone string, regionID *string) (*models.Branch, error) {
	if !staff.Role.IsTopLevel() {
		return nil, apperr.AccessDenied("only owners and executive managers can create branches")
	}
	if name == "" {
		return nil, apperr.Validation("branch name is required")
	}
	if regionID != nil {
		region, err := s.merchants.GetRegion(*regionID)
		if err != nil || region.MerchantID != staff.MerchantID {
			return nil, apperr.Validation("region does not belong to your merchant")
		}
	}

	branch := &models.Branch{
		ID:         uuid.NewString(),
		MerchantID: staff.MerchantID,
		RegionID:   regionID,
		Name:       name,
		City:       city,
		Address:    address,
		Phone:      phone,
		IsActive:   true,
	}
	if err := s.merchants.CreateBranch(branch); err != nil {
		return nil, apperr.Internal("failed to create branch", err)
	}
	return branch, nil
}

func (s *service) ListBranches(staff *models.MerchantUser) ([]models.Branch, error) {
	branches, err := s.merchants.ListBranches(staff.MerchantID)
	if err != nil {
		return nil, apperr.Internal("failed to list branches", err)
	}

	ids, all := access.AccessibleBranchIDs(staff, branches)
	if all {
		return branches, nil
	}
	visible := make(map[string]bool, len(ids))
	for _, id := range ids {
		visible[id] = true
	}
	scoped := branches[:0]
	for _, b := range branches {
		if visible[b.ID] {
			scoped = append(scoped, b)
		}
	}
	return scoped, nil
}

func (s *service) SetBranchActive(staff *models.MerchantUser, branchID string, active bool) (*models.Branch, error) {
	if !staff.Role.IsTopLevel() {
		return nil, apperr.AccessDenied("only owners and executive managers can change branch status")
	}

	branch, err := s.merchants.GetBranch(branchID)
	if err != nil {
		if err == repositories.ErrBranchNotFound {
			return nil, apperr.NotFound("branch not found")
		}
		return nil, apperr.Internal("failed to load branch", err)
	}
	if branch.MerchantID != staff.MerchantID {
		return nil, apperr.NotFound("branch not found")
	}

	branch.IsActive = active
	if err := s.merchants.UpdateBranch(branch); err != nil {
		return nil, apperr.Internal("failed to update branch", err)
	}
	return branch, nil
}

func (s *service) CreateRegion(staff *models.MerchantUser, name string) (*models.Region, error) {
	if !staff.Role.IsTopLevel() {
		return nil, apperr.AccessDenied("only owners and executive managers can create regions")
	}
	if name == "" {
		return nil, apperr.Validation("region name is required")
	}

	region := &models.Region{
		ID:         uuid.NewString(),
		MerchantID: staff.MerchantID,
		Name:       name,
	}
	if err := s.merchants.CreateRegion(region); err != nil {
		return nil, apperr.Internal("failed to create region", err)
	}
	return region, nil
}

func (s *service) ListRegions(staff *models.MerchantUser) ([]models.Region, error) {
	regions, err := s.merchants.ListRegions(staff.MerchantID)
	if err != nil {
		return nil, apperr.Internal("failed to list regions", err)
	}
	return regions, nil
}

// CreateStaff requires the requester to outrank the new role, and the new
// member's assignment to lie within the requester's own scope.
func (s *service) CreateStaff(actor audit.Actor, requester *models.MerchantUser, in StaffInput) (*models.MerchantUser, error) {
	if !in.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}
	if !requester.Role.Outranks(in.Role) {
		return nil, apperr.AccessDenied("you cannot create staff at or above your own role")
	}

	v := validation.New()
	v.Email("email", in.Email)
	v.Password("password", in.Password)
	v.Required("full_name", in.FullName)
	if !v.Valid() {
		for field, msg := range v.Errors {
			return nil, apperr.Validation("%s: %s", field, msg)
		}
	}

	target := &models.MerchantUser{
		MerchantID: requester.MerchantID,
		Role:       in.Role,
		BranchID:   in.BranchID,
		RegionID:   in.RegionID,
	}
	if !access.CanManage(requester, target) {
		return nil, apperr.AccessDenied("assignment is outside your scope")
	}

	if _, err := s.staff.GetByEmail(in.Email); err == nil {
		return nil, apperr.Conflict("a staff account with this email already exists")
	} else if err != repositories.ErrStaffNotFound {
		return nil, apperr.Internal("failed to check staff email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	member := &models.MerchantUser{
		ID:         uuid.NewString(),
		MerchantID: requester.MerchantID,
		BranchID:   in.BranchID,
		RegionID:   in.RegionID,
		Email:      in.Email,
		Password:   string(hashed),
		FullName:   in.FullName,
		Phone:      in.Phone,
		NationalID: in.NationalID,
		Role:       in.Role,
		IsActive:   true,
	}
	if err := s.staff.Create(member); err != nil {
		return nil, apperr.Internal("failed to create staff member", err)
	}

	s.auditor.Record(actor, "staff_created", "merchant_user", member.ID,
		nil, models.JSON{"role": string(member.Role), "email": member.Email})
	return member, nil
}

func (s *service) GetStaff(requester *models.MerchantUser, staffID string) (*models.MerchantUser, error) {
	target, err := s.getStaff(requester, staffID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewStaff(requester, target) {
		return nil, apperr.AccessDenied("staff member is outside your scope")
	}
	return target, nil
}

func (s *service) ListStaff(requester *models.MerchantUser) ([]models.MerchantUser, error) {
	scope := access.StaffScope(requester)
	if scope.Empty() {
		return []models.MerchantUser{}, nil
	}
	members, err := s.staff.ListScoped(requester.MerchantID, scope)
	if err != nil {
		return nil, apperr.Internal("failed to list staff", err)
	}
	return members, nil
}

func (s *service) UpdateStaff(actor audit.Actor, requester *models.MerchantUser, staffID string, in StaffInput) (*models.MerchantUser, error) {
	target, err := s.getStaff(requester, staffID)
	if err != nil {
		return nil, err
	}
	if !access.CanManage(requester, target) {
		return nil, apperr.AccessDenied("staff member is outside your scope")
	}

	old := models.JSON{"role": string(target.Role), "full_name": target.FullName}
	if in.FullName != "" {
		target.FullName = in.FullName
	}
	if in.Phone != "" {
		target.Phone = in.Phone
	}
	if in.Role != "" && in.Role != target.Role {
		if !in.Role.Valid() {
			return nil, apperr.Validation("unknown role %q", in.Role)
		}
		if requester.ID == target.ID || !requester.Role.Outranks(in.Role) {
			return nil, apperr.AccessDenied("you cannot assign this role")
		}
		target.Role = in.Role
	}
	if in.BranchID != nil {
		target.BranchID = in.BranchID
	}
	if in.RegionID != nil {
		target.RegionID = in.RegionID
	}

	if err := s.staff.Update(target); err != nil {
		return nil, apperr.Internal("failed to update staff member", err)
	}

	s.auditor.Record(actor, "staff_updated", "merchant_user", target.ID,
		old, models.JSON{"role": string(target.Role), "full_name": target.FullName})
	return target, nil
}

func (s *service) SetStaffActive(actor audit.Actor, requester *models.MerchantUser, staffID string, active bool) (*models.MerchantUser, error) {
	target, err := s.getStaff(requester, staffID)
	if err != nil {
		return nil, err
	}
	if requester.ID == target.ID {
		return nil, apperr.Validation("you cannot deactivate your own account")
	}
	if !access.CanManage(requester, target) {
		return nil, apperr.AccessDenied("staff member is outside your scope")
	}

	target.IsActive = active
	if err := s.staff.Update(target); err != nil {
		return nil, apperr.Internal("failed to update staff member", err)
	}

	action := "staff_deactivated"
	if active {
		action = "staff_activated"
	}
	s.auditor.Record(actor, action, "merchant_user", target.ID,
		models.JSON{"is_active": !active}, models.JSON{"is_active": active})
	return target, nil
}

func (s *service) getStaff(requester *models.MerchantUser, staffID string) (*models.MerchantUser, error) {
	target, err := s.staff.GetByID(staffID)
	if err != nil {
		if err == repositories.ErrStaffNotFound {
			return nil, apperr.NotFound("staff member not found")
		}
		return nil, apperr.Internal("failed to load staff member", err)
	}
	if target.MerchantID != requester.MerchantID {
		return nil, apperr.NotFound("staff member not found")
	}
	return target, nil
}
