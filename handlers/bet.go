// handlers/bet.go
package handlers

import (
	"parier-bet-system/middleware"
	"parier-bet-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBetRoutes(app *fiber.App, betService *services.BetService, dictService *services.DictionaryService, auth *services.AuthServiceClient) {
	api := app.Group("/api/v1/parier")

	// 🔓 Dictionary routes — no user context, but still behind gateway auth.
	// POST so the client can send {language} in the body.
	api.Post("/categories", dictService.GetCategories)
	api.Post("/verification-sources", dictService.GetVerificationSources)
	api.Post("/bet-statuses", dictService.GetBetStatuses)
	api.Post("/bet-types", dictService.GetBetTypes)

	// 🔓 Feed — anonymous allowed; a valid token adds likedByMe to rows
	optional := api.Group("/", middleware.UserContextMiddleware(auth, false))
	optional.Post("/bet", betService.ListBets)
	optional.Post("/bet/:bet_id/comments", betService.ListComments)

	// 🔐 Secured routes — require user context (userID), enforced via middleware
	secured := api.Group("/", middleware.UserContextMiddleware(auth, true))
	secured.Put("/bet", betService.CreateBet)
	secured.Post("/bet/:bet_id/like", betService.LikeBet)
	secured.Post("/bet/:bet_id/unlike", betService.UnlikeBet)
	secured.Post("/bet/:bet_id/comment", betService.CreateComment)
	secured.Post("/bet/:bet_id/join", betService.JoinBet)
	secured.Post("/comment/:comment_id/like", betService.LikeComment)
	secured.Post("/comment/:comment_id/unlike", betService.UnlikeComment)
}
