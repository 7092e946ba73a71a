package services_test

import (
	"testing"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/core/services"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory database with the full schema migrated.
// The pool is pinned to a single connection so concurrent transactions
// serialize instead of each goroutine seeing its own empty :memory: file.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// seedProduct inserts a product directly and returns it
func seedProduct(t *testing.T, db *gorm.DB, name, sku string, quantity, reorderPoint int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.NewString(),
		Name:         name,
		SKU:          sku,
		Category:     "Widgets",
		Location:     "Warehouse A, Shelf 1",
		Quantity:     quantity,
		ReorderPoint: reorderPoint,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func productQuantity(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Quantity
}

func newLoanService(db *gorm.DB) *services.LoanService {
	return services.NewLoanService(repositories.NewLoanRepository(db))
}

func newProductService(db *gorm.DB) *services.ProductService {
	return services.NewProductService(repositories.NewProductRepository(db))
}

func newUserService(db *gorm.DB) *services.UserService {
	return services.NewUserService(repositories.NewUserRepository(db))
}
