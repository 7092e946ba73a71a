package repositories

import (
	"context"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/core/domain"

	"gorm.io/gorm"
)

// stockLogRepository implements StockLogRepository. The journal is
// append-only and its writes happen inside the owning transactions, so the
// repository only exposes reads.
type stockLogRepository struct {
	db *gorm.DB
}

// NewStockLogRepository creates a new stock log repository
func NewStockLogRepository(db *gorm.DB) StockLogRepository {
	return &stockLogRepository{db: db}
}

// ListRecent returns the most recent stock movements
func (r *stockLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.StockLog, error) {
	var entries []*models.StockLog
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, domain.NewStoreError("list stock logs", err)
	}
	return entries, nil
}
