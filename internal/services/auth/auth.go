// Package auth authenticates the three actor kinds and mints their
// tokens. Login failures are deliberately uniform: a wrong identifier and
// a wrong password produce the same error.
package auth

import (
	"errors"
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/repositories"
	"bariq/internal/utils"
	"bariq/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = errors.New("invalid credentials")

// TokenPair carries the minted access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput creates a new customer account.
type RegisterInput struct {
	NationalID string
	Phone      string
	Email      string
	Password   string
	FullName   string
	City       string
}

// Service signs actors in and refreshes their sessions.
type Service interface {
	RegisterCustomer(in RegisterInput) (*models.Customer, *TokenPair, error)
	CustomerLogin(nationalID, password string) (*models.Customer, *TokenPair, error)
	StaffLogin(email, password string) (*models.MerchantUser, *TokenPair, error)
	AdminLogin(email, password string) (*models.AdminUser, *TokenPair, error)
	Refresh(refreshToken string) (*TokenPair, error)
}

type service struct {
	customers repositories.CustomerRepository
	staff     repositories.StaffRepository
	admins    repositories.AdminRepository
	rules     config.BusinessRules
}

func NewService(
	customers repositories.CustomerRepository,
	staff repositories.StaffRepository,
	admins repositories.AdminRepository,
	rules config.BusinessRules,
) Service {
	if customers == nil {
		panic("auth: customer repository is required")
	}
	if staff == nil {
		panic("auth: staff repository is required")
	}
	if admins == nil {
		panic("auth: admin repository is required")
	}
	return &service{customers: customers, staff: staff, admins: admins, rules: rules}
}

func (s *service) RegisterCustomer(in RegisterInput) (*models.Customer, *TokenPair, error) {
	v := validation.New()
	v.NationalID("national_id", in.NationalID)
	v.Phone("phone", in.Phone)
	if in.Email != "" {
		v.Email("email", in.Email)
	}
	v.Password("password", in.Password)
	v.Required("full_name", in.FullName)
	if !v.Valid() {
		for field, msg := range v.Errors {
			return nil, nil, apperr.Validation("%s: %s", field, msg)
		}
	}

	if _, err := s.customers.GetByNationalID(in.NationalID); err == nil {
		return nil, nil, apperr.Conflict("an account with this national ID already exists")
	} else if err != repositories.ErrCustomerNotFound {
		return nil, nil, apperr.Internal("failed to check national ID", err)
	}
	if _, err := s.customers.GetByPhone(in.Phone); err == nil {
		return nil, nil, apperr.Conflict("an account with this phone number already exists")
	} else if err != repositories.ErrCustomerNotFound {
		return nil, nil, apperr.Internal("failed to check phone", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperr.Internal("failed to hash password", err)
	}

	customer := &models.Customer{
		ID:          uuid.NewString(),
		NationalID:  in.NationalID,
		Phone:       in.Phone,
		Email:       in.Email,
		Password:    string(hashed),
		FullName:    in.FullName,
		City:        in.City,
		CreditLimit: s.rules.DefaultCreditLimit,
		Status:      models.CustomerStatusActive,
	}
	if err := s.customers.Create(customer); err != nil {
		return nil, nil, apperr.Internal("failed to create customer", err)
	}

	tokens, err := mintTokens(customerClaims(customer))
	if err != nil {
		return nil, nil, err
	}
	return customer, tokens, nil
}

func (s *service) CustomerLogin(nationalID, password string) (*models.Customer, *TokenPair, error) {
	customer, err := s.customers.GetByNationalID(nationalID)
	if err != nil {
		if err == repositories.ErrCustomerNotFound {
			return nil, nil, apperr.AccessDenied(errBadCredentials.Error())
		}
		return nil, nil, apperr.Internal("failed to load customer", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(password)) != nil {
		return nil, nil, apperr.AccessDenied(errBadCredentials.Error())
	}
	if !customer.IsActive() {
		return nil, nil, apperr.AccessDenied("account is %s", customer.Status)
	}

	s.stampCustomerLogin(customer)
	tokens, err := mintTokens(customerClaims(customer))
	if err != nil {
		return nil, nil, err
	}
	return customer, tokens, nil
}

func (s *service) StaffLogin(email, password string) (*models.MerchantUser, *TokenPair, error) {
	user, err := s.staff.GetByEmail(email)
	if err != nil {
		if err == repositories.ErrStaffNotFound {
			return nil, nil, apperr.AccessDenied(errBadCredentials.Error())
		}
		return nil, nil, apperr.Internal("failed to load staff member", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, apperr.AccessDenied(errBadCredentials.Error())
	}
	if !user.IsActive {
		return nil, nil, apperr.AccessDenied("account is deactivated")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.staff.Update(user); err != nil {
		return nil, nil, apperr.Internal("failed to record login", err)
	}

	tokens, err := mintTokens(staffClaims(user))
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *service) AdminLogin(email, password string) (*models.AdminUser, *TokenPair, error) {
	admin, err := s.admins.GetByEmail(email)
	if err != nil {
		if err == repositories.ErrAdminNotFound {
			return nil, nil, apperr.AccessDenied(errBadCredentials.Error())
		}
		return nil, nil, apperr.Internal("failed to load admin", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, nil, apperr.AccessDenied(errBadCredentials.Error())
	}
	if !admin.IsActive {
		return nil, nil, apperr.AccessDenied("account is deactivated")
	}

	now := time.Now().UTC()
	admin.LastLoginAt = &now
	if err := s.admins.Update(admin); err != nil {
		return nil, nil, apperr.Internal("failed to record login", err)
	}

	tokens, err := mintTokens(adminClaims(admin))
	if err != nil {
		return nil, nil, err
	}
	return admin, tokens, nil
}

// Refresh re-verifies the actor behind a refresh token before minting a
// new pair, so a deactivated account cannot renew its session.
func (s *service) Refresh(refreshToken string) (*TokenPair, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return nil, apperr.AccessDenied("invalid or expired refresh token")
	}

	switch claims.ActorType {
	case models.ActorCustomer:
		customer, err := s.customers.GetByID(claims.ActorID)
		if err != nil {
			return nil, apperr.AccessDenied("account no longer exists")
		}
		if !customer.IsActive() {
			return nil, apperr.AccessDenied("account is %s", customer.Status)
		}
		return mintTokens(customerClaims(customer))
	case models.ActorStaff:
		user, err := s.staff.GetActiveByID(claims.ActorID)
		if err != nil {
			return nil, apperr.AccessDenied("account no longer exists")
		}
		return mintTokens(staffClaims(user))
	case models.ActorAdmin:
		admin, err := s.admins.GetByID(claims.ActorID)
		if err != nil || !admin.IsActive {
			return nil, apperr.AccessDenied("account no longer exists")
		}
		return mintTokens(adminClaims(admin))
	}
	return nil, apperr.AccessDenied("unknown actor type")
}

func (s *service) stampCustomerLogin(customer *models.Customer) {
	now := time.Now().UTC()
	customer.LastLoginAt = &now
	// login stamping is best-effort
	_ = s.customers.Update(customer)
}

func customerClaims(c *models.Customer) *models.Claims {
	return &models.Claims{
		ActorID:   c.ID,
		ActorType: models.ActorCustomer,
		Email:     c.Email,
	}
}

func staffClaims(u *models.MerchantUser) *models.Claims {
	claims := &models.Claims{
		ActorID:    u.ID,
		ActorType:  models.ActorStaff,
		Email:      u.Email,
		Role:       string(u.Role),
		MerchantID: u.MerchantID,
	}
	if u.BranchID != nil {
		claims.BranchID = *u.BranchID
	}
	if u.RegionID != nil {
		claims.RegionID = *u.RegionID
	}
	return claims
}

func adminClaims(a *models.AdminUser) *models.Claims {
	return &models.Claims{
		ActorID:   a.ID,
		ActorType: models.ActorAdmin,
		Email:     a.Email,
		Role:      a.Role,
	}
}

func mintTokens(claims *models.Claims) (*TokenPair, error) {
	access, refresh, err := utils.GenerateTokens(claims)
	if err != nil {
		return nil, apperr.Internal("failed to generate tokens", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
