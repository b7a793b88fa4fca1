// services/responses.go
package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Response envelope shared by all endpoints:
//   reads  → {success, data, count?, total?}
//   writes → {success, message, data?}
//   errors → {success: false, error, details?}

func sendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func sendPaginated(c *fiber.Ctx, data interface{}, count int, total int64) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   count,
		"total":   total,
	})
}

func sendError(c *fiber.Ctx, status int, message string, details string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"details": details,
	})
}

// sendServiceError maps an error to a status: ServiceError → 400
// verbatim, ErrNotFound → 404, anything else → 500 generic.
func sendServiceError(c *fiber.Ctx, err error) error {
	if svcErr := GetServiceError(err); svcErr != nil {
		return sendError(c, fiber.StatusBadRequest, svcErr.Code, svcErr.Message)
	}
	if errors.Is(err, ErrNotFound) {
		return sendError(c, fiber.StatusNotFound, "Not found", err.Error())
	}
	return sendError(c, fiber.StatusInternalServerError, "Internal server error", err.Error())
}

// currentUserID reads the identity set by the auth middleware; empty
// string means anonymous.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
