package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockwise-decd/internal/adapters/http/handlers"
	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newLoanTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	handler := handlers.NewLoanHandler(
		services.NewLoanService(repositories.NewLoanRepository(db)),
	)

	app := fiber.New()
	app.Get("/loans", handler.ListLoans)
	app.Post("/loans", handler.CreateLoan)
	app.Post("/loans/:id/return", handler.MarkReturned)
	app.Delete("/loans/:id", handler.DeleteLoan)
	return app, db
}

func seedLoanProduct(t *testing.T, db *gorm.DB, quantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.NewString(),
		Name:         "Blue Widgets",
		SKU:          "BW-001",
		Category:     "Widgets",
		Location:     "Warehouse A",
		Quantity:     quantity,
		ReorderPoint: 5,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestCreateLoanEndpoint(t *testing.T) {
	app, db := newLoanTestApp(t)
	product := seedLoanProduct(t, db, 10)

	resp, env := doJSON(t, app, http.MethodPost, "/loans", fiber.Map{
		"product_id": product.ID,
		"quantity":   4,
		"requester":  "Ana García",
		"loan_date":  "2026-08-15",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)

	var updated models.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 6, updated.Quantity)
}

func TestCreateLoanEndpoint_InsufficientStock(t *testing.T) {
	app, db := newLoanTestApp(t)
	product := seedLoanProduct(t, db, 3)

	resp, env := doJSON(t, app, http.MethodPost, "/loans", fiber.Map{
		"product_id": product.ID,
		"quantity":   4,
		"requester":  "Ana",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "only 3 units")
}

func TestCreateLoanEndpoint_UnknownProduct(t *testing.T) {
	app, _ := newLoanTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/loans", fiber.Map{
		"product_id": "no-such-product",
		"quantity":   1,
		"requester":  "Ana",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateLoanEndpoint_BadQuantity(t *testing.T) {
	app, db := newLoanTestApp(t)
	product := seedLoanProduct(t, db, 10)

	resp, _ := doJSON(t, app, http.MethodPost, "/loans", fiber.Map{
		"product_id": product.ID,
		"quantity":   0,
		"requester":  "Ana",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReturnLoanEndpoint(t *testing.T) {
	app, db := newLoanTestApp(t)
	product := seedLoanProduct(t, db, 10)

	_, env := doJSON(t, app, http.MethodPost, "/loans", fiber.Map{
		"product_id": product.ID,
		"quantity":   4,
		"requester":  "Ana",
	})
	var created struct {
		Loan models.Loan `json:"loan"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/loans/%s/return", created.Loan.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Second return is a conflict
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/loans/%s/return", created.Loan.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteLoanEndpoint_ActiveConflict(t *testing.T) {
	app, db := newLoanTestApp(t)
	product := seedLoanProduct(t, db, 10)

	_, env := doJSON(t, app, http.MethodPost, "/loans", fiber.Map{
		"product_id": product.ID,
		"quantity":   4,
		"requester":  "Ana",
	})
	var created struct {
		Loan models.Loan `json:"loan"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	resp, _ := doJSON(t, app, http.MethodDelete, "/loans/"+created.Loan.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/loans/%s/return", created.Loan.ID), nil)
	resp, _ = doJSON(t, app, http.MethodDelete, "/loans/"+created.Loan.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
