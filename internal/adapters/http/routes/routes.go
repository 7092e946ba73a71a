package routes

import (
	"time"

	"stockwise-decd/internal/adapters/http/handlers"
	"stockwise-decd/internal/adapters/http/middleware"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/config"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	productRepo := repositories.NewProductRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	stockLogRepo := repositories.NewStockLogRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo)
	loanService := services.NewLoanService(loanRepo)

	narratorService := services.NewNarratorService(services.NarratorConfig{
		URL:    cfg.Narrator.URL,
		APIKey: cfg.Narrator.APIKey,
	})
	reportService := services.NewReportService(productRepo, loanRepo, narratorService)
	dashboardService := services.NewDashboardService(productRepo, loanRepo, stockLogRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	loanHandler := handlers.NewLoanHandler(loanService)
	reportHandler := handlers.NewReportHandler(reportService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, authHandler, userHandler, productHandler,
		loanHandler, reportHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	loanHandler *handlers.LoanHandler,
	reportHandler *handlers.ReportHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// Auth routes (public, rate-limited on login, token responses never cached)
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authHandler.Logout)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	userRoutes.Get("/", userHandler.ListUsers)
	userRoutes.Post("/", userHandler.CreateUser)
	userRoutes.Get("/:id", userHandler.GetUser)
	userRoutes.Put("/:id", userHandler.UpdateUser)
	userRoutes.Delete("/:id", userHandler.DeleteUser)

	// Product routes (inventory capability)
	productRoutes := router.Group("/products")
	productRoutes.Use(middleware.AuthMiddleware(cfg))
	productRoutes.Use(middleware.RequirePermission(domain.PermInventory))
	productRoutes.Get("/", productHandler.ListProducts)
	productRoutes.Post("/", productHandler.CreateProduct)
	productRoutes.Get("/:id", productHandler.GetProduct)
	productRoutes.Put("/:id", productHandler.UpdateProduct)
	productRoutes.Delete("/:id", productHandler.DeleteProduct)
	productRoutes.Post("/:id/adjust", productHandler.AdjustStock)

	// Loan routes (loans capability)
	loanRoutes := router.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Use(middleware.RequirePermission(domain.PermLoans))
	loanRoutes.Get("/", loanHandler.ListLoans)
	loanRoutes.Post("/", loanHandler.CreateLoan)
	loanRoutes.Post("/:id/return", loanHandler.MarkReturned)
	loanRoutes.Delete("/:id", loanHandler.DeleteLoan)

	// Report routes (reports capability)
	reportRoutes := router.Group("/reports")
	reportRoutes.Use(middleware.AuthMiddleware(cfg))
	reportRoutes.Use(middleware.RequirePermission(domain.PermReports))
	reportRoutes.Get("/inventory", reportHandler.GenerateInventoryReport)

	// Dashboard routes (dashboard capability, short private cache)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.RequirePermission(domain.PermDashboard))
	dashboardRoutes.Use(middleware.PrivateCacheHeaders(30 * time.Second))
	dashboardRoutes.Get("/", dashboardHandler.GetSummary)
}
