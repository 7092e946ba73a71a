package repositories

import (
	"context"
	"errors"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/core/domain"

	"gorm.io/gorm"
)

// productRepository implements ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return domain.NewStoreError("create product", err)
	}
	return nil
}

// GetByID gets a product by ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("read product", err)
	}
	return &product, nil
}

// GetBySKU gets a product by SKU, compared case-insensitively
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("LOWER(sku) = LOWER(?)", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("read product", err)
	}
	return &product, nil
}

// Update writes a catalog edit. Quantity is deliberately excluded from the
// column list: stock only moves through AdjustQuantity and the loan ledger
// transactions, so a stale struct can never resurrect loaned-out units.
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Model(product).
		Select("name", "sku", "category", "location", "reorder_point").
		Updates(product).Error
	if err != nil {
		return domain.NewStoreError("update product", err)
	}
	return nil
}

// Delete soft deletes a product
func (r *productRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return domain.NewStoreError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List lists products with pagination
func (r *productRepository) List(ctx context.Context, offset, limit int) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, domain.NewStoreError("count products", err)
	}
	if err := r.db.WithContext(ctx).Order("name ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, domain.NewStoreError("list products", err)
	}
	return products, total, nil
}

// ListAll returns the full catalog snapshot (for reports and dashboard)
func (r *productRepository) ListAll(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, domain.NewStoreError("list products", err)
	}
	return products, nil
}

// AdjustQuantity applies a signed stock delta inside a transaction and
// journals the movement. Negative deltas may not take the quantity below
// zero: the conditional UPDATE refuses and the caller gets ErrInvalidInput.
func (r *productRepository) AdjustQuantity(ctx context.Context, id string, delta int, reason string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Product{}).Where("id = ?", id)
		if delta < 0 {
			query = query.Where("quantity >= ?", -delta)
		}
		res := query.Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return domain.NewStoreError("adjust stock", res.Error)
		}
		if res.RowsAffected == 0 {
			err := tx.Where("id = ?", id).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProductNotFound
			}
			if err != nil {
				return domain.NewStoreError("read product", err)
			}
			return domain.ErrInvalidInput
		}
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			return domain.NewStoreError("read product", err)
		}
		entry := &models.StockLog{
			ProductName:    product.Name,
			QuantityChange: delta,
			Reason:         reason,
		}
		if err := tx.Create(entry).Error; err != nil {
			return domain.NewStoreError("log stock movement", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}
