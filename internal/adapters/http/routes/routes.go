package routes

import (
	"dloms-api/internal/adapters/filestore"
	"dloms-api/internal/adapters/http/handlers"
	"dloms-api/internal/adapters/http/middleware"
	"dloms-api/internal/adapters/persistence/repositories"
	"dloms-api/internal/config"
	"dloms-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, store *filestore.LocalStore, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	parcelRepo := repositories.NewParcelRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	documentService := services.NewDocumentService(parcelRepo, store)
	parcelService := services.NewParcelService(parcelRepo, documentService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	parcelHandler := handlers.NewParcelHandler(parcelService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api")

	// Uploaded documents are served as static files
	app.Static("/api/files/documents", store.BaseDir())

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Get("/profile", middleware.AuthMiddleware(cfg), authHandler.Profile)

	// Parcel routes (authenticated; role and ownership rules are enforced
	// inside the lifecycle service, not here)
	parcelRoutes := api.Group("/parcels")
	parcelRoutes.Use(middleware.AuthMiddleware(cfg))
	// Registered before /:parcelId so "spatial" is not captured as an ID
	parcelRoutes.Get("/spatial/within-bbox", parcelHandler.WithinBBox)
	parcelRoutes.Post("/", parcelHandler.Create)
	parcelRoutes.Get("/", parcelHandler.List)
	parcelRoutes.Get("/:parcelId", parcelHandler.Get)
	parcelRoutes.Put("/:parcelId", parcelHandler.Update)
	parcelRoutes.Delete("/:parcelId", parcelHandler.Delete)
	parcelRoutes.Post("/:parcelId/documents", parcelHandler.AddDocuments)

	// Admin user management routes
	adminRoutes := api.Group("/admin/users")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/", userHandler.List)
	adminRoutes.Post("/", userHandler.Create)
	adminRoutes.Put("/:id", userHandler.Update)
	adminRoutes.Delete("/:id", userHandler.Delete)
}
