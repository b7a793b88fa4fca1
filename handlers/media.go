// handlers/media.go
package handlers

import (
	"parier-bet-system/middleware"
	"parier-bet-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMediaRoutes(app *fiber.App, mediaService *services.MediaService, profileService *services.ProfileService, auth *services.AuthServiceClient) {
	// 🔐 Uploads are tied to a user
	media := app.Group("/api/v1/media", middleware.UserContextMiddleware(auth, true))
	media.Post("/upload", mediaService.UploadMedia)

	// Profile proxies the auth service and merges local betting stats.
	// The handler reads the bearer token itself, no middleware needed.
	app.Post("/api/v1/auth/profile", profileService.GetProfile)
	app.Get("/api/v1/auth/profile", profileService.GetProfile)
}
