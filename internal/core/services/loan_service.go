package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/pkg/validator"

	"github.com/google/uuid"
)

const (
	// maxTxAttempts bounds the retry loop around store transaction conflicts
	maxTxAttempts = 3
	// txBackoffBase is the first retry delay; it doubles per attempt
	txBackoffBase = 50 * time.Millisecond
)

// LoanService is the loan ledger. It owns the invariant that product stock
// plus the units reserved by active loans stays constant modulo explicit
// stock adjustments, and it is the only writer of Loan.status.
type LoanService struct {
	loanRepo repositories.LoanRepository
}

// NewLoanService creates a new loan service
func NewLoanService(loanRepo repositories.LoanRepository) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
	}
}

// CreateLoanInput represents a register-loan request
type CreateLoanInput struct {
	ProductID string    `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	Requester string    `json:"requester" validate:"required"`
	LoanDate  time.Time `json:"loan_date"`
}

// CreateLoan registers a loan, atomically checking and decrementing the
// product's stock. Status is always forced to Prestado.
func (s *LoanService) CreateLoan(ctx context.Context, input *CreateLoanInput) (*models.Loan, error) {
	if err := validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	input.Requester = strings.TrimSpace(input.Requester)
	input.ProductID = strings.TrimSpace(input.ProductID)
	if input.Requester == "" || input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}

	loanDate := input.LoanDate
	if loanDate.IsZero() {
		loanDate = time.Now()
	}

	loan := &models.Loan{
		ID:        uuid.NewString(),
		ProductID: input.ProductID,
		Requester: input.Requester,
		Quantity:  input.Quantity,
		LoanDate:  loanDate,
	}

	err := s.withRetry(ctx, func() error {
		return s.loanRepo.CreateWithStockDecrement(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Loan %s registered: %d x %q for %s", loan.ID, loan.Quantity, loan.ProductName, loan.Requester)
	return loan, nil
}

// MarkReturned flips a loan to Devuelto and credits the product's stock
// back exactly once. A second call fails with ErrLoanAlreadyReturned.
func (s *LoanService) MarkReturned(ctx context.Context, loanID string, returnDate time.Time) error {
	loanID = strings.TrimSpace(loanID)
	if loanID == "" {
		return domain.ErrInvalidInput
	}
	if returnDate.IsZero() {
		returnDate = time.Now()
	}

	err := s.withRetry(ctx, func() error {
		return s.loanRepo.MarkReturned(ctx, loanID, returnDate)
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Loan %s marked as returned", loanID)
	return nil
}

// DeleteLoan removes a returned loan record. Deleting an active loan is
// rejected: its units are still committed out of stock.
func (s *LoanService) DeleteLoan(ctx context.Context, loanID string) error {
	loanID = strings.TrimSpace(loanID)
	if loanID == "" {
		return domain.ErrInvalidInput
	}

	err := s.withRetry(ctx, func() error {
		return s.loanRepo.Delete(ctx, loanID)
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Loan %s deleted", loanID)
	return nil
}

// GetLoan returns a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

// ListLoans returns a snapshot of all loans, newest first
func (s *LoanService) ListLoans(ctx context.Context) ([]*models.Loan, error) {
	return s.loanRepo.List(ctx)
}

// ListActiveLoans returns loans still in Prestado status
func (s *LoanService) ListActiveLoans(ctx context.Context) ([]*models.Loan, error) {
	return s.loanRepo.ListActive(ctx)
}

// withRetry reruns op with exponential backoff while the store reports a
// transient transaction conflict. Domain errors pass through untouched;
// exhausting the attempts surfaces ErrConcurrencyConflict.
func (s *LoanService) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			backoff := txBackoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = op()
		if err == nil {
			return nil
		}
		if !isRetryableConflict(err) {
			return err
		}
		log.Printf("⚠️ Transaction conflict (attempt %d/%d): %v", attempt+1, maxTxAttempts, err)
	}
	return domain.ErrConcurrencyConflict
}

// isRetryableConflict reports whether err is a transient serialization
// failure from the backing store (deadlock, lock wait timeout, busy file).
func isRetryableConflict(err error) bool {
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		return false
	}
	msg := strings.ToLower(storeErr.Error())
	for _, marker := range []string{
		"deadlock",
		"lock wait timeout",
		"try restarting transaction",
		"database is locked",
		"database table is locked",
		"busy",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
