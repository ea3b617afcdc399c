package handlers

import (
	"bariq/internal/models"

	"github.com/gofiber/fiber/v2"
)

// View helpers strip password hashes and internal fields from API output.

func customerView(c *models.Customer) fiber.Map {
	return fiber.Map{
		"id":           c.ID,
		"national_id":  c.NationalID,
		"phone":        c.Phone,
		"email":        c.Email,
		"full_name":    c.FullName,
		"city":         c.City,
		"credit_limit": c.CreditLimit,
		"status":       c.Status,
		"created_at":   c.CreatedAt,
	}
}

func staffView(u *models.MerchantUser) fiber.Map {
	return fiber.Map{
		"id":          u.ID,
		"merchant_id": u.MerchantID,
		"branch_id":   u.BranchID,
		"region_id":   u.RegionID,
		"email":       u.Email,
		"full_name":   u.FullName,
		"phone":       u.Phone,
		"role":        u.Role,
		"is_active":   u.IsActive,
	}
}

func merchantView(m *models.Merchant) fiber.Map {
	return fiber.Map{
		"id":                      m.ID,
		"name_ar":                 m.NameAr,
		"name_en":                 m.NameEn,
		"commercial_registration": m.CommercialRegistration,
		"business_type":           m.BusinessType,
		"email":                   m.Email,
		"phone":                   m.Phone,
		"city":                    m.City,
		"commission_rate":         m.CommissionRate,
		"status":                  m.Status,
		"created_at":              m.CreatedAt,
	}
}
