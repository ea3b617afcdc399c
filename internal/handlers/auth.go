// Package handlers translates HTTP requests into service calls. Handlers
// parse and shape input, delegate all business decisions to services and
// map service errors onto HTTP statuses.
package handlers

import (
	"bariq/internal/services/auth"
	"bariq/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var input struct {
		NationalID string `json:"national_id"`
		Phone      string `json:"phone"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		FullName   string `json:"full_name"`
		City       string `json:"city"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	customer, tokens, err := h.auth.RegisterCustomer(auth.RegisterInput{
		NationalID: input.NationalID,
		Phone:      input.Phone,
		Email:      input.Email,
		Password:   input.Password,
		FullName:   input.FullName,
		City:       input.City,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"customer": customerView(customer),
		"tokens":   tokens,
	})
}

func (h *AuthHandler) CustomerLogin(c *fiber.Ctx) error {
	var input struct {
		NationalID string `json:"national_id"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	customer, tokens, err := h.auth.CustomerLogin(input.NationalID, input.Password)
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Success(c, fiber.Map{
		"customer": customerView(customer),
		"tokens":   tokens,
	})
}

func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	user, tokens, err := h.auth.StaffLogin(input.Email, input.Password)
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Success(c, fiber.Map{
		"user":   staffView(user),
		"tokens": tokens,
	})
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	admin, tokens, err := h.auth.AdminLogin(input.Email, input.Password)
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Success(c, fiber.Map{
		"admin": fiber.Map{
			"id":        admin.ID,
			"email":     admin.Email,
			"full_name": admin.FullName,
			"role":      admin.Role,
		},
		"tokens": tokens,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.RefreshToken == "" {
		return utils.BadRequest(c, "refresh_token is required")
	}

	tokens, err := h.auth.Refresh(input.RefreshToken)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tokens)
}
