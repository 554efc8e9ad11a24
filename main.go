package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"quiz-progression-system/handlers"
	"quiz-progression-system/middleware"
	"quiz-progression-system/models"
	"quiz-progression-system/services"
	"quiz-progression-system/utils"
	"quiz-progression-system/workers"

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

	app := fiber.New()

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError turns unique-constraint violations into
	// gorm.ErrDuplicatedKey — the duel and badge services rely on it.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.PlayerProfile{},
		&models.ProfileBadge{},
		&models.MissionProgress{},
		&models.UnitProgress{},
		&models.Challenge{},
		&models.Claimable{},
		&models.InventoryItem{},
		&models.BadgeDefinition{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	pushRelayURL := os.Getenv("PUSH_RELAY_URL")
	pushServiceToken := os.Getenv("PUSH_SERVICE_TOKEN")
	var notifier services.Notifier = services.NopNotifier{}
	if pushRelayURL != "" {
		notifier = utils.NewPushRelayClient(pushRelayURL, pushServiceToken)
	} else {
		log.Println("⚠️  PUSH_RELAY_URL not set — notifications disabled")
	}

	streakService := services.NewStreakService(db)
	duelService := services.NewDuelService(db, notifier)
	claimService := services.NewClaimService(db)
	badgeService := services.NewBadgeService(db)

	if err := badgeService.SeedBadgeCatalog(); err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}

	reminderWorker := workers.NewStreakReminderWorker(db, notifier)
	reminderWorker.Start()

	// ✅ Setup routes — gateway auth enforced globally, user context per group
	handlers.SetupProgressionRoutes(app, streakService, duelService, claimService, badgeService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Streak reminder worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
