package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"stockwise-decd/internal/adapters/http/middleware"
	"stockwise-decd/internal/adapters/http/routes"
	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/config"
	"stockwise-decd/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "stockwise-decd/docs" // Swagger docs
)

// @title StockWise API
// @version 1.0
// @description Inventario y préstamos D.E.C.D - StockWise v1.0 API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email soporte@decd.gob.mx

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.stockwise.decd.gob.mx
// @BasePath /api/v1
// @schemes https

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
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed admin user and sample catalog
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Start daily maintenance cron (low-stock sweep, token purge)
	stockAlerts := services.NewStockAlertService(
		repositories.NewProductRepository(db),
		repositories.NewRefreshTokenRepository(db),
		services.NewNotificationService(),
	)
	stockAlerts.Start()
	defer stockAlerts.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "StockWise API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

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
