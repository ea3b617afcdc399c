package models

import "github.com/golang-jwt/jwt/v5"

// Actor types carried in token claims
const (
	ActorCustomer = "customer"
	ActorStaff    = "merchant_user"
	ActorAdmin    = "admin_user"
)

// Claims is the authenticated actor descriptor attached to every request.
// The core trusts its authenticity and applies authorization logic on top.
type Claims struct {
	jwt.RegisteredClaims
	ActorID    string `json:"actor_id"`
	ActorType  string `json:"actor_type"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	MerchantID string `json:"merchant_id,omitempty"`
	BranchID   string `json:"branch_id,omitempty"`
	RegionID   string `json:"region_id,omitempty"`
}

// IsCustomer reports whether the actor is a customer.
func (c *Claims) IsCustomer() bool { return c.ActorType == ActorCustomer }

// IsStaff reports whether the actor is merchant staff.
func (c *Claims) IsStaff() bool { return c.ActorType == ActorStaff }

// IsAdmin reports whether the actor is a platform admin.
func (c *Claims) IsAdmin() bool { return c.ActorType == ActorAdmin }
