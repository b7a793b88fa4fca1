// handlers/admin.go
package handlers

import (
	"parier-bet-system/middleware"
	"parier-bet-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService, auth *services.AuthServiceClient) {
	// 🔐 Admin-only — auth + role gate
	admin := app.Group("/api/v1/admin",
		middleware.UserContextMiddleware(auth, true),
		middleware.RequireRole("admin"),
	)

	admin.Get("/credit-tokens", adminService.PreviewCredit)
	admin.Post("/credit-tokens", adminService.ApplyCredit)
}
