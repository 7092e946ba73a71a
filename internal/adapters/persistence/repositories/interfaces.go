package repositories

import (
	"context"
	"time"

	"stockwise-decd/internal/adapters/persistence/models"
)

// ProductRepository defines product repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.Product, int64, error)
	ListAll(ctx context.Context) ([]*models.Product, error)
	AdjustQuantity(ctx context.Context, id string, delta int, reason string) (*models.Product, error)
}

// LoanRepository defines the loan ledger repository interface.
// The three mutating operations each run as a single store transaction.
type LoanRepository interface {
	CreateWithStockDecrement(ctx context.Context, loan *models.Loan) error
	MarkReturned(ctx context.Context, loanID string, returnDate time.Time) error
	Delete(ctx context.Context, loanID string) error
	GetByID(ctx context.Context, loanID string) (*models.Loan, error)
	List(ctx context.Context) ([]*models.Loan, error)
	ListActive(ctx context.Context) ([]*models.Loan, error)
	CountActive(ctx context.Context) (int64, error)
}

// StockLogRepository reads the stock movement journal. Entries are only
// written inside the ledger and adjustment transactions.
type StockLogRepository interface {
	ListRecent(ctx context.Context, limit int) ([]*models.StockLog, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	CountAdmins(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
