package services_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSweep_PostsAlert(t *testing.T) {
	db := openTestDB(t)

	received := make(chan map[string]string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
	}))
	defer server.Close()
	t.Setenv("NOTIFY_WEBHOOK_URL", server.URL)

	seedProduct(t, db, "Agotado", "AG-001", 0, 5)
	seedProduct(t, db, "Bajo", "BJ-002", 3, 10)
	seedProduct(t, db, "Sano", "SA-003", 50, 10)

	svc := services.NewStockAlertService(
		repositories.NewProductRepository(db),
		repositories.NewRefreshTokenRepository(db),
		services.NewNotificationService(),
	)
	svc.RunSweep()

	payload := <-received
	assert.Contains(t, payload["text"], "Agotado (AG-001)")
	assert.Contains(t, payload["text"], "Bajo (BJ-002): 3 unidades")
	assert.NotContains(t, payload["text"], "Sano")
}

func TestRunSweep_HealthyStockStaysQuiet(t *testing.T) {
	db := openTestDB(t)

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()
	t.Setenv("NOTIFY_WEBHOOK_URL", server.URL)

	seedProduct(t, db, "Sano", "SA-003", 50, 10)

	svc := services.NewStockAlertService(
		repositories.NewProductRepository(db),
		repositories.NewRefreshTokenRepository(db),
		services.NewNotificationService(),
	)
	svc.RunSweep()

	assert.Zero(t, calls)
}
