package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"parier-bet-system/handlers"
	"parier-bet-system/middleware"
	"parier-bet-system/models"
	"parier-bet-system/services"
	"parier-bet-system/utils"
	"parier-bet-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // media uploads only, 20MB is plenty
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Accept-Language, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("PARIER_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("PARIER_SERVICE_TOKEN environment variable not set")
	}
	authClient := services.NewAuthServiceClient(authServiceURL, serviceToken)

	// DATA_SOURCE=fixture runs the whole API off the in-memory data set —
	// no Postgres, no Redis, no workers. Default is db.
	dataSource := os.Getenv("DATA_SOURCE")
	if dataSource == "" {
		dataSource = "db"
	}

	var db *gorm.DB
	var betStore services.BetStore
	var dictStore services.DictionaryStore
	var walletStore services.WalletStore
	var creditStore services.CreditStore
	var referralService *services.ReferralService

	switch dataSource {
	case "fixture":
		log.Println("⚠️  DATA_SOURCE=fixture — serving in-memory demo data")
		fixtures := services.NewFixtureBetStore()
		betStore = fixtures
		dictStore = services.NewFixtureDictionaryStore()
		walletStore = fixtures.WalletStore()
		creditStore = services.NewFixtureCreditStore(fixtures.CreditCandidates())

	case "db":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}

		if err := db.AutoMigrate(
			&models.User{},
			&models.Category{},
			&models.VerificationSource{},
			&models.BetStatusEntry{},
			&models.BetType{},
			&models.Bet{},
			&models.BetTag{},
			&models.BetSource{},
			&models.BetLike{},
			&models.BetComment{},
			&models.BetCommentLike{},
			&models.BetParticipation{},
			&models.TokenWallet{},
			&models.TokenTransaction{},
			&models.ReferralCode{},
			&models.Referral{},
			&models.ReferralEarning{},
		); err != nil {
			log.Fatal("failed to migrate database:", err)
		}

		betStore = services.NewGormBetStore(db)
		dictStore = services.NewGormDictionaryStore(db)
		walletStore = services.NewGormWalletStore(db)
		creditStore = services.NewGormCreditStore(db)
		referralService = services.NewReferralService(db)

	default:
		log.Fatalf("unknown DATA_SOURCE %q (want db or fixture)", dataSource)
	}

	r2Enabled := os.Getenv("R2_ACCESS_KEY_ID") != ""
	if r2Enabled {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  R2 not configured, media uploads fall back to local disk")
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
	}

	rdb, err := utils.ConnectRedis(os.Getenv("REDIS_ADDR"))
	if err != nil {
		log.Printf("⚠️  Redis unavailable, dictionary cache disabled: %v", err)
		rdb = nil
	}

	betService := services.NewBetService(betStore, db)
	dictService := services.NewDictionaryService(dictStore, rdb)
	walletService := services.NewWalletService(walletStore)
	adminService := services.NewAdminService(creditStore)
	mediaService := services.NewMediaService(r2Enabled)
	profileService := services.NewProfileService(authClient, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if db != nil {
		syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
		if syncServiceURL == "" {
			log.Fatal("SYNC_SERVICE_URL environment variable not set")
		}
		syncWorker := workers.NewUserSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)

		bonusWorker := workers.NewReferralBonusWorker(db)
		bonusWorker.Start(ctx)

		betService.StartDeadlineScheduler()
	}

	handlers.SetupBetRoutes(app, betService, dictService, authClient)
	handlers.SetupWalletRoutes(app, walletService, referralService, authClient)
	handlers.SetupAdminRoutes(app, adminService, authClient)
	handlers.SetupMediaRoutes(app, mediaService, profileService, authClient)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s (data source: %s)", port, dataSource)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
