// Package middleware provides HTTP middleware for the fiber application:
// token validation and per-portal actor guards.
package middleware

import (
	"log"
	"strings"

	"bariq/internal/models"
	"bariq/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Authenticate validates the bearer token and stores the actor claims in
// the request context. It says nothing about WHO the actor is; the portal
// guards below do that.
func Authenticate(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("token validation error: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals("claims", claims)
	return c.Next()
}

// Claims returns the actor claims stored by Authenticate, or nil when the
// route is not authenticated.
func Claims(c *fiber.Ctx) *models.Claims {
	claims, _ := c.Locals("claims").(*models.Claims)
	return claims
}

// RequireCustomer admits only customer tokens.
func RequireCustomer(c *fiber.Ctx) error {
	claims := Claims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if !claims.IsCustomer() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "customer access required"})
	}
	return c.Next()
}

// RequireStaff admits only merchant staff tokens.
func RequireStaff(c *fiber.Ctx) error {
	claims := Claims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if !claims.IsStaff() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "staff access required"})
	}
	return c.Next()
}

// RequireAdmin admits only platform admin tokens.
func RequireAdmin(c *fiber.Ctx) error {
	claims := Claims(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if !claims.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
	}
	return c.Next()
}

// RequireRole admits staff whose role is at or above the given role in the
// hierarchy.
func RequireRole(minimum models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || !claims.IsStaff() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		if models.Role(claims.Role).Level() < minimum.Level() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
		}
		return c.Next()
	}
}

// NotCashier admits every staff role above cashier; reports and
// settlements are hidden from the sales floor.
func NotCashier(c *fiber.Ctx) error {
	claims := Claims(c)
	if claims == nil || !claims.IsStaff() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	if models.Role(claims.Role) == models.RoleCashier {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
	}
	return c.Next()
}
