package repositories

import (
	"context"
	"errors"
	"time"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/core/domain"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository on top of GORM transactions.
// Every mutation that touches both a loan and its product runs inside one
// store transaction: either both writes commit or neither does.
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// CreateWithStockDecrement atomically checks and decrements product stock,
// then inserts the loan row. The stock check is a conditional UPDATE
// (quantity >= requested) so two concurrent loans can never jointly
// overdraw the product: the second conditional write sees the already
// decremented quantity.
func (r *loanRepository) CreateWithStockDecrement(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", loan.ProductID, loan.Quantity).
			Update("quantity", gorm.Expr("quantity - ?", loan.Quantity))
		if res.Error != nil {
			return domain.NewStoreError("decrement stock", res.Error)
		}
		if res.RowsAffected == 0 {
			// Either the product is gone or it has too few units.
			var product models.Product
			err := tx.Where("id = ?", loan.ProductID).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProductNotFound
			}
			if err != nil {
				return domain.NewStoreError("read product", err)
			}
			return &domain.InsufficientStockError{
				ProductName: product.Name,
				Requested:   loan.Quantity,
				Available:   product.Quantity,
			}
		}

		// Capture the denormalized product name inside the same transaction.
		var product models.Product
		if err := tx.Where("id = ?", loan.ProductID).First(&product).Error; err != nil {
			return domain.NewStoreError("read product", err)
		}
		loan.ProductName = product.Name
		loan.Status = string(domain.StatusOnLoan)

		if err := tx.Create(loan).Error; err != nil {
			return domain.NewStoreError("create loan", err)
		}

		entry := &models.StockLog{
			ProductName:    product.Name,
			QuantityChange: -loan.Quantity,
			Reason:         models.ReasonLoan,
		}
		if err := tx.Create(entry).Error; err != nil {
			return domain.NewStoreError("log stock movement", err)
		}
		return nil
	})
}

// MarkReturned atomically flips the loan to Devuelto and credits the
// product's stock back. The status flip is a conditional UPDATE keyed on
// status = Prestado, so a second concurrent return finds zero affected
// rows and the stock is credited exactly once.
//
// If the product was deleted between loan and return, the credit is
// skipped: stock cannot be restored to a nonexistent product. The
// conservation invariant is knowingly lost in that edge case.
func (r *loanRepository) MarkReturned(ctx context.Context, loanID string, returnDate time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", loanID, string(domain.StatusOnLoan)).
			Updates(map[string]interface{}{
				"status":      string(domain.StatusReturned),
				"return_date": returnDate,
			})
		if res.Error != nil {
			return domain.NewStoreError("mark returned", res.Error)
		}
		if res.RowsAffected == 0 {
			var loan models.Loan
			err := tx.Where("id = ?", loanID).First(&loan).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			if err != nil {
				return domain.NewStoreError("read loan", err)
			}
			return domain.ErrLoanAlreadyReturned
		}

		var loan models.Loan
		if err := tx.Where("id = ?", loanID).First(&loan).Error; err != nil {
			return domain.NewStoreError("read loan", err)
		}

		credit := tx.Model(&models.Product{}).
			Where("id = ?", loan.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", loan.Quantity))
		if credit.Error != nil {
			return domain.NewStoreError("credit stock", credit.Error)
		}
		if credit.RowsAffected > 0 {
			entry := &models.StockLog{
				ProductName:    loan.ProductName,
				QuantityChange: loan.Quantity,
				Reason:         models.ReasonReturn,
			}
			if err := tx.Create(entry).Error; err != nil {
				return domain.NewStoreError("log stock movement", err)
			}
		}
		return nil
	})
}

// Delete removes a returned loan record. Active loans are rejected: their
// units were already committed out of stock and must first come back
// through MarkReturned.
func (r *loanRepository) Delete(ctx context.Context, loanID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		err := tx.Where("id = ?", loanID).First(&loan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrLoanNotFound
		}
		if err != nil {
			return domain.NewStoreError("read loan", err)
		}
		if loan.Status == string(domain.StatusOnLoan) {
			return domain.ErrLoanActive
		}
		if err := tx.Delete(&models.Loan{}, "id = ?", loanID).Error; err != nil {
			return domain.NewStoreError("delete loan", err)
		}
		return nil
	})
}

// GetByID gets a loan by ID
func (r *loanRepository) GetByID(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", loanID).First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLoanNotFound
	}
	if err != nil {
		return nil, domain.NewStoreError("read loan", err)
	}
	return &loan, nil
}

// List returns all loans, newest first
func (r *loanRepository) List(ctx context.Context) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).Order("loan_date DESC, created_at DESC").Find(&loans).Error
	if err != nil {
		return nil, domain.NewStoreError("list loans", err)
	}
	return loans, nil
}

// ListActive returns loans still in Prestado status
func (r *loanRepository) ListActive(ctx context.Context) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusOnLoan)).
		Order("loan_date DESC").
		Find(&loans).Error
	if err != nil {
		return nil, domain.NewStoreError("list active loans", err)
	}
	return loans, nil
}

// CountActive counts loans still in Prestado status
func (r *loanRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", string(domain.StatusOnLoan)).
		Count(&count).Error
	if err != nil {
		return 0, domain.NewStoreError("count active loans", err)
	}
	return count, nil
}
