package services

import (
	"context"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
)

// DashboardService aggregates the read-only figures shown on the landing
// dashboard. Everything here is display glue over committed snapshots.
type DashboardService struct {
	productRepo  repositories.ProductRepository
	loanRepo     repositories.LoanRepository
	stockLogRepo repositories.StockLogRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	productRepo repositories.ProductRepository,
	loanRepo repositories.LoanRepository,
	stockLogRepo repositories.StockLogRepository,
) *DashboardService {
	return &DashboardService{
		productRepo:  productRepo,
		loanRepo:     loanRepo,
		stockLogRepo: stockLogRepo,
	}
}

// DashboardSummary represents the dashboard payload
type DashboardSummary struct {
	TotalProducts   int                `json:"total_products"`
	TotalUnits      int                `json:"total_units"`
	ActiveLoans     int64              `json:"active_loans"`
	OutOfStock      []*models.Product  `json:"out_of_stock"`
	LowStock        []*models.Product  `json:"low_stock"`
	RecentMovements []*models.StockLog `json:"recent_movements"`
}

// GetSummary builds the dashboard summary
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		TotalProducts: len(products),
		OutOfStock:    []*models.Product{},
		LowStock:      []*models.Product{},
	}
	for _, p := range products {
		summary.TotalUnits += p.Quantity
		dp := p.ToDomain()
		switch {
		case dp.IsOutOfStock():
			summary.OutOfStock = append(summary.OutOfStock, p)
		case dp.IsLowStock():
			summary.LowStock = append(summary.LowStock, p)
		}
	}

	summary.ActiveLoans, err = s.loanRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	summary.RecentMovements, err = s.stockLogRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
