package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"campus-event-system/handlers"
	"campus-event-system/models"
	"campus-event-system/services"
	"campus-event-system/workers"

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
		BodyLimit: 10 * 1024 * 1024, // 10MB, QR data URLs included
	})

	// Load allowed origins from environment variable
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Organizer{},
		&models.PassReset{},
		&models.DraftEvent{},
		&models.Event{},
		&models.Ticket{},
		&models.Team{},
		&models.TeamMember{},
		&models.ChatMessage{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedAdminAccount(db); err != nil {
		log.Fatal("failed to seed admin account:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifyWorker := workers.NewNotifyWorker(256)
	go func() {
		log.Println("Starting notification worker...")
		notifyWorker.Start(ctx)
	}()

	authService := services.NewAuthService(db)
	adminService := services.NewAdminService(db)
	eventService := services.NewEventService(db, notifyWorker)
	registrationService := services.NewRegistrationService(db, notifyWorker.EnqueueEmail)
	teamService := services.NewTeamService(db, notifyWorker.EnqueueEmail)
	attendanceService := services.NewAttendanceService(db)
	profileService := services.NewProfileService(db)
	chatService := services.NewChatService(db)

	eventService.StartLifecycleScheduler()

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupAdminRoutes(app, adminService)
	handlers.SetupOrganizerRoutes(app, eventService, attendanceService, profileService)
	handlers.SetupParticipantRoutes(app, registrationService, profileService)
	handlers.SetupTeamRoutes(app, teamService)
	handlers.SetupChatRoutes(app, chatService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Notification worker running")
	log.Println("✅ Event lifecycle scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
