// handlers/wallet.go
package handlers

import (
	"parier-bet-system/middleware"
	"parier-bet-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService, referralService *services.ReferralService, auth *services.AuthServiceClient) {
	// 🔐 Everything here is per-user — auth required throughout
	wallet := app.Group("/api/v1/wallet", middleware.UserContextMiddleware(auth, true))
	wallet.Get("/balance", walletService.GetBalance)
	wallet.Post("/deposit", walletService.Deposit)
	wallet.Post("/withdraw", walletService.Withdraw)
	wallet.Get("/transactions", walletService.GetTransactions)

	if referralService != nil {
		referral := app.Group("/api/v1/referral", middleware.UserContextMiddleware(auth, true))
		referral.Get("/code", referralService.GetCode)
		referral.Get("/stats", referralService.GetStats)
		referral.Post("/register", referralService.RegisterReferral)
	}
}
