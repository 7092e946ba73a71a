package services

import (
	"context"
	"log"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

const (
	// stockAlertSchedule fires the daily low-stock sweep at 08:30
	stockAlertSchedule = "30 8 * * *"
	// tokenPurgeSchedule removes expired refresh tokens nightly
	tokenPurgeSchedule = "0 3 * * *"
)

// StockAlertService runs the daily maintenance cron: a low-stock sweep
// that pushes alerts to the webhook, and a purge of expired refresh tokens.
type StockAlertService struct {
	productRepo repositories.ProductRepository
	tokenRepo   repositories.RefreshTokenRepository
	notify      *NotificationService
	cron        *cron.Cron
}

// NewStockAlertService creates a new stock alert service
func NewStockAlertService(
	productRepo repositories.ProductRepository,
	tokenRepo repositories.RefreshTokenRepository,
	notify *NotificationService,
) *StockAlertService {
	return &StockAlertService{
		productRepo: productRepo,
		tokenRepo:   tokenRepo,
		notify:      notify,
		cron:        cron.New(),
	}
}

// Start schedules the daily jobs. Without a configured webhook the
// low-stock sweep stays idle; the token purge always runs.
func (s *StockAlertService) Start() {
	if _, err := s.cron.AddFunc(tokenPurgeSchedule, s.PurgeExpiredTokens); err != nil {
		log.Printf("❌ Failed to schedule token purge job: %v", err)
	}

	if s.notify.IsEnabled() {
		if _, err := s.cron.AddFunc(stockAlertSchedule, s.RunSweep); err != nil {
			log.Printf("❌ Failed to schedule stock alert job: %v", err)
		}
	} else {
		log.Println("ℹ️ Stock alerts disabled (no webhook configured)")
	}

	s.cron.Start()
	log.Println("🚀 Maintenance cron started (sweep 08:30, token purge 03:00)")
}

// Stop stops the cron scheduler
func (s *StockAlertService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Maintenance cron stopped")
}

// RunSweep performs one low-stock sweep immediately
func (s *StockAlertService) RunSweep() {
	products, err := s.productRepo.ListAll(context.Background())
	if err != nil {
		log.Printf("❌ Stock alert sweep failed: %v", err)
		return
	}

	var critical, low []*models.Product
	for _, p := range products {
		dp := p.ToDomain()
		switch {
		case dp.IsOutOfStock():
			critical = append(critical, p)
		case dp.IsLowStock():
			low = append(low, p)
		}
	}

	if len(critical) == 0 && len(low) == 0 {
		return
	}
	log.Printf("📉 Stock sweep: %d out of stock, %d low", len(critical), len(low))
	s.notify.NotifyLowStock(critical, low)
}

// PurgeExpiredTokens removes expired refresh tokens from the store
func (s *StockAlertService) PurgeExpiredTokens() {
	if err := s.tokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Token purge failed: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens purged")
}
