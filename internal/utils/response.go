package utils

import (
	"log"

	"bariq/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// Error maps a service error to its HTTP status and message. Internal
// errors are logged and hidden behind a generic message.
func Error(c *fiber.Ctx, err error) error {
	switch apperr.Kind(err) {
	case apperr.KindValidation:
		return BadRequest(c, err.Error())
	case apperr.KindConflict:
		return Respond(c, fiber.StatusConflict, fiber.Map{"error": err.Error()})
	case apperr.KindNotFound:
		return NotFound(c, err.Error())
	case apperr.KindAccessDenied:
		return Forbidden(c, err.Error())
	case apperr.KindInsufficientCredit:
		return Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		return InternalError(c, "internal server error")
	}
}
