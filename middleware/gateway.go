// middleware/gateway.go
package middleware

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuthMiddleware validates the service token from the Gateway.
// The token travels in X-Service-Token; Authorization carries the end
// user's bearer token and is handled by UserContextMiddleware.
func GatewayAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("PARIER_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ PARIER_SERVICE_TOKEN is not set — service cannot authenticate Gateway")
	}

	return func(c *fiber.Ctx) error {
		token := c.Get("X-Service-Token")
		if token == "" {
			log.Printf("🚫 [GATEWAY_AUTH] Missing X-Service-Token header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		if token != expectedToken {
			log.Printf("❌ [GATEWAY_AUTH] Invalid service token for %s (got prefix: %.10s...)", c.Path(), token)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
