package helpers

import (
	"log"

	"marketpay/services"

	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

func statusForKind(kind string) int {
	switch kind {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindInvalidState, services.KindConflict:
		return fiber.StatusConflict
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindInsufficientBalance:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// JSONWorkflowError maps a workflow error kind to its HTTP status.
// Internal errors are logged with full context and surfaced
// generically.
func JSONWorkflowError(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		return JSONError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR")
	}
	return JSONError(c, statusForKind(kind), err.Error())
}
