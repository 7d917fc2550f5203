package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"clubquest/handlers"
	"clubquest/middleware"
	"clubquest/models"
	"clubquest/services"
	"clubquest/utils"
	"clubquest/workers"

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
		BodyLimit: 32 * 1024 * 1024, // avatars and item images only
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
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

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Unit{},
		&models.UnitMember{},
		&models.Mission{},
		&models.MissionAssignment{},
		&models.UnitMission{},
		&models.ValidationRecord{},
		&models.RankingEntry{},
		&models.Season{},
		&models.SeasonRanking{},
		&models.SeasonReward{},
		&models.ShopItem{},
		&models.Purchase{},
		&models.Achievement{},
		&models.MemberAchievement{},
		&models.Rank{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditWriter := workers.NewAuditWriter(db, 512)
	go auditWriter.Run(ctx)

	auditService := services.NewAuditService(db, auditWriter)
	ledger := services.NewResourceLedger(db)
	memberService := services.NewMemberService(db, ledger, auditService)
	unitService := services.NewUnitService(db, auditService)
	missionService := services.NewMissionService(db, auditService)
	validationService := services.NewValidationService(db, ledger, auditService)
	rankingService := services.NewRankingService(db)
	shopService := services.NewShopService(db, ledger, auditService)
	seasonService := services.NewSeasonService(db, auditService)
	achievementService := services.NewAchievementService(db, auditService)
	rankService := services.NewRankService(db, auditService)

	missionService.StartMissionSweeper()

	handlers.SetupMemberRoutes(app, memberService, rankService, auditService)
	handlers.SetupUnitRoutes(app, unitService)
	handlers.SetupMissionRoutes(app, missionService, validationService)
	handlers.SetupRankingRoutes(app, rankingService)
	handlers.SetupShopRoutes(app, shopService)
	handlers.SetupSeasonRoutes(app, seasonService)
	handlers.SetupAchievementRoutes(app, achievementService, rankService)

	app.Static("/uploads", "./uploads")

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5300"
	}

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", addr)
	log.Println("✅ Mission sweeper running (every 1m)")
	log.Println("✅ Audit writer running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
