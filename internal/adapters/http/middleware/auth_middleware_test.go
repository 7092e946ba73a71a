package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"stockwise-decd/internal/adapters/http/middleware"
	"stockwise-decd/internal/config"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-access-secret"

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:          testSecret,
			AccessTokenMins: 15,
		},
	}
}

func newGatedApp(perm domain.Permission) *fiber.App {
	app := fiber.New()
	app.Get("/gated",
		middleware.AuthMiddleware(testConfig()),
		middleware.RequirePermission(perm),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) },
	)
	return app
}

func bearerRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	app := newGatedApp(domain.PermLoans)

	resp, err := app.Test(bearerRequest(t, ""), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	app := newGatedApp(domain.PermLoans)

	resp, err := app.Test(bearerRequest(t, "not-a-jwt"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequirePermission_GrantedCapability(t *testing.T) {
	app := newGatedApp(domain.PermLoans)
	token, err := jwt.GenerateAccessToken(1, "ana", "user", []string{"loans"}, testSecret, 15)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(t, token), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePermission_MissingCapability(t *testing.T) {
	app := newGatedApp(domain.PermUsers)
	token, err := jwt.GenerateAccessToken(1, "ana", "user", []string{"loans"}, testSecret, 15)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(t, token), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequirePermission_AdminPassesImplicitly(t *testing.T) {
	app := newGatedApp(domain.PermUsers)
	token, err := jwt.GenerateAccessToken(1, "root", "admin", nil, testSecret, 15)
	require.NoError(t, err)

	resp, err := app.Test(bearerRequest(t, token), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	app := newGatedApp(domain.PermLoans)
	token, err := jwt.GenerateAccessToken(1, "ana", "user", []string{"loans"}, testSecret, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
