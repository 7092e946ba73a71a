package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoan_DecrementsStock(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 15, 10)

	loan, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  5,
		Requester: "Ana García",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusOnLoan), loan.Status)
	assert.Equal(t, "Blue Widgets", loan.ProductName)
	assert.False(t, loan.LoanDate.IsZero())
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))

	// The movement lands in the journal as a negative entry
	var entry models.StockLog
	require.NoError(t, db.Order("id DESC").First(&entry).Error)
	assert.Equal(t, "Blue Widgets", entry.ProductName)
	assert.Equal(t, -5, entry.QuantityChange)
	assert.Equal(t, models.ReasonLoan, entry.Reason)
}

func TestCreateLoan_InsufficientStock(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Purple Doohickeys", "PD-005", 3, 5)

	_, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  4,
		Requester: "Luis",
	})

	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "Purple Doohickeys", insufficientErr.ProductName)
	assert.Equal(t, 4, insufficientErr.Requested)
	assert.Equal(t, 3, insufficientErr.Available)

	// Stock untouched, no loan row, no journal entry
	assert.Equal(t, 3, productQuantity(t, db, product.ID))
	var loanCount, logCount int64
	db.Model(&models.Loan{}).Count(&loanCount)
	db.Model(&models.StockLog{}).Count(&logCount)
	assert.Zero(t, loanCount)
	assert.Zero(t, logCount)
}

func TestCreateLoan_ExactRemainingStock(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Red Gadgets", "RG-002", 8, 15)

	_, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  8,
		Requester: "Marta",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, productQuantity(t, db, product.ID))
}

func TestCreateLoan_ProductNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)

	_, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: "no-such-product",
		Quantity:  1,
		Requester: "Luis",
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateLoan_RejectsInvalidInput(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Green Gizmos", "GG-003", 50, 20)

	cases := []struct {
		name  string
		input *services.CreateLoanInput
	}{
		{"zero quantity", &services.CreateLoanInput{ProductID: product.ID, Quantity: 0, Requester: "Ana"}},
		{"negative quantity", &services.CreateLoanInput{ProductID: product.ID, Quantity: -3, Requester: "Ana"}},
		{"missing requester", &services.CreateLoanInput{ProductID: product.ID, Quantity: 1}},
		{"blank requester", &services.CreateLoanInput{ProductID: product.ID, Quantity: 1, Requester: "   "}},
		{"missing product", &services.CreateLoanInput{Quantity: 1, Requester: "Ana"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateLoan(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	// Nothing leaked through
	assert.Equal(t, 50, productQuantity(t, db, product.ID))
}

func TestMarkReturned_RestoresStock(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 15, 10)

	loan, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  6,
		Requester: "Ana",
	})
	require.NoError(t, err)
	require.Equal(t, 9, productQuantity(t, db, product.ID))

	require.NoError(t, svc.MarkReturned(context.Background(), loan.ID, time.Now()))

	assert.Equal(t, 15, productQuantity(t, db, product.ID))

	got, err := svc.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusReturned), got.Status)
	require.NotNil(t, got.ReturnDate)

	var entry models.StockLog
	require.NoError(t, db.Order("id DESC").First(&entry).Error)
	assert.Equal(t, 6, entry.QuantityChange)
	assert.Equal(t, models.ReasonReturn, entry.Reason)
}

func TestMarkReturned_TwiceIsRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 10, 5)

	loan, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  4,
		Requester: "Ana",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkReturned(context.Background(), loan.ID, time.Now()))
	err = svc.MarkReturned(context.Background(), loan.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyReturned)

	// The credit landed exactly once
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestMarkReturned_ConcurrentDoubleReturn(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 10, 5)

	loan, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  4,
		Requester: "Ana",
	})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.MarkReturned(context.Background(), loan.ID, time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrLoanAlreadyReturned)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestCreateLoan_ConcurrentNoOversell(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 10, 5)

	// Two requests whose combined quantity exceeds stock: exactly one wins
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateLoan(context.Background(), &services.CreateLoanInput{
				ProductID: product.ID,
				Quantity:  7,
				Requester: "Goroutine",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var insufficientErr *domain.InsufficientStockError
			assert.ErrorAs(t, err, &insufficientErr)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 3, productQuantity(t, db, product.ID))
}

func TestDeleteLoan_ActiveIsRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 10, 5)

	loan, err := svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  2,
		Requester: "Ana",
	})
	require.NoError(t, err)

	err = svc.DeleteLoan(context.Background(), loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanActive)

	// Still there, still holding its units
	_, err = svc.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, productQuantity(t, db, product.ID))

	// Returned loans delete cleanly
	require.NoError(t, svc.MarkReturned(context.Background(), loan.ID, time.Now()))
	require.NoError(t, svc.DeleteLoan(context.Background(), loan.ID))
	_, err = svc.GetLoan(context.Background(), loan.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestDeleteLoan_NotFound(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)

	err := svc.DeleteLoan(context.Background(), "no-such-loan")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestMarkReturned_ProductDeletedSkipsCredit(t *testing.T) {
	db := openTestDB(t)
	loanSvc := newLoanService(db)
	productSvc := newProductService(db)
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 10, 5)

	loan, err := loanSvc.CreateLoan(context.Background(), &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  3,
		Requester: "Ana",
	})
	require.NoError(t, err)

	require.NoError(t, productSvc.DeleteProduct(context.Background(), product.ID))

	// The return still completes; there is no product left to credit
	require.NoError(t, loanSvc.MarkReturned(context.Background(), loan.ID, time.Now()))

	got, err := loanSvc.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusReturned), got.Status)
}

func TestLoanLedger_StockConservation(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	ctx := context.Background()
	product := seedProduct(t, db, "Green Gizmos", "GG-003", 50, 20)

	var loans []*models.Loan
	for _, q := range []int{5, 10, 7} {
		loan, err := svc.CreateLoan(ctx, &services.CreateLoanInput{
			ProductID: product.ID,
			Quantity:  q,
			Requester: "Equipo",
		})
		require.NoError(t, err)
		loans = append(loans, loan)
	}
	require.Equal(t, 28, productQuantity(t, db, product.ID))

	// Stock plus active-loan units always equals the initial total
	active, err := svc.ListActiveLoans(ctx)
	require.NoError(t, err)
	onLoan := 0
	for _, l := range active {
		onLoan += l.Quantity
	}
	assert.Equal(t, 50, productQuantity(t, db, product.ID)+onLoan)

	require.NoError(t, svc.MarkReturned(ctx, loans[1].ID, time.Now()))
	assert.Equal(t, 38, productQuantity(t, db, product.ID))

	active, err = svc.ListActiveLoans(ctx)
	require.NoError(t, err)
	onLoan = 0
	for _, l := range active {
		onLoan += l.Quantity
	}
	assert.Equal(t, 50, productQuantity(t, db, product.ID)+onLoan)

	// Returned loans can be purged; marking them again fails cleanly
	require.NoError(t, svc.DeleteLoan(ctx, loans[1].ID))
	err = svc.MarkReturned(ctx, loans[1].ID, time.Now())
	assert.True(t, errors.Is(err, domain.ErrLoanNotFound))
}

func TestListLoans_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	ctx := context.Background()
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 30, 10)

	first, err := svc.CreateLoan(ctx, &services.CreateLoanInput{
		ProductID: product.ID, Quantity: 1, Requester: "Ana",
		LoanDate: time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	second, err := svc.CreateLoan(ctx, &services.CreateLoanInput{
		ProductID: product.ID, Quantity: 1, Requester: "Luis",
		LoanDate: time.Now().Add(-1 * time.Hour),
	})
	require.NoError(t, err)

	loans, err := svc.ListLoans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.Equal(t, second.ID, loans[0].ID)
	assert.Equal(t, first.ID, loans[1].ID)
}

func TestLoanLifecycle(t *testing.T) {
	db := openTestDB(t)
	svc := newLoanService(db)
	ctx := context.Background()
	product := seedProduct(t, db, "Blue Widgets", "BW-001", 10, 5)

	loan, err := svc.CreateLoan(ctx, &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  4,
		Requester: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusOnLoan), loan.Status)
	assert.Equal(t, 6, productQuantity(t, db, product.ID))

	// Only 6 remain, Bob wants 8
	_, err = svc.CreateLoan(ctx, &services.CreateLoanInput{
		ProductID: product.ID,
		Quantity:  8,
		Requester: "Bob",
	})
	var insufficientErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 6, insufficientErr.Available)

	require.NoError(t, svc.MarkReturned(ctx, loan.ID, time.Now()))
	assert.Equal(t, 10, productQuantity(t, db, product.ID))

	require.NoError(t, svc.DeleteLoan(ctx, loan.ID))

	err = svc.MarkReturned(ctx, loan.ID, time.Now())
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
