package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"dloms-api/internal/adapters/filestore"
	"dloms-api/internal/adapters/http/middleware"
	"dloms-api/internal/adapters/http/routes"
	"dloms-api/internal/adapters/persistence/models"
	"dloms-api/internal/adapters/persistence/repositories"
	"dloms-api/internal/config"
	"dloms-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title DLOMS Land Registry API
// @version 1.0
// @description Digital Land Ownership Management System API

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default admin user
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Document file store
	store, err := filestore.New(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("❌ Failed to prepare upload directory: %v", err)
	}

	// Nightly orphaned-document sweep
	cleanupService := services.NewCleanupService(repositories.NewParcelRepository(db), store)
	cleanupService.Start()
	defer cleanupService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "DLOMS Land Registry API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    120 << 20, // headroom for 10 files x 10 MB plus form fields
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, store and cfg for dependency injection)
	routes.Setup(app, db, store, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
