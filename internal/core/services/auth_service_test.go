package services_test

import (
	"context"
	"testing"

	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/config"
	"stockwise-decd/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testJWTConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func newAuthService(db *gorm.DB) *services.AuthService {
	return services.NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		testJWTConfig(),
	)
}

func seedUser(t *testing.T, db *gorm.DB, username, plainPassword string, active bool) uint {
	t.Helper()

	userSvc := newUserService(db)
	user, err := userSvc.CreateUser(context.Background(), &services.CreateUserInput{
		Name:        "Test User",
		Username:    username,
		Password:    plainPassword,
		Role:        "user",
		Permissions: []string{"dashboard"},
	})
	require.NoError(t, err)

	if !active {
		isActive := false
		_, err = userSvc.UpdateUser(context.Background(), user.ID, &services.UpdateUserInput{
			IsActive: &isActive,
		})
		require.NoError(t, err)
	}
	return user.ID
}

func TestLogin(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)
	seedUser(t, db, "agarcia", "secret123", true)

	resp, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "agarcia",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "agarcia", resp.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)
	seedUser(t, db, "agarcia", "secret123", true)

	_, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "agarcia",
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "nobody",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)
	seedUser(t, db, "agarcia", "secret123", false)

	_, err := svc.Login(context.Background(), &services.LoginInput{
		Username: "agarcia",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, services.ErrUserInactive)
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	seedUser(t, db, "agarcia", "secret123", true)

	login, err := svc.Login(ctx, &services.LoginInput{Username: "agarcia", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked: replaying it fails
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)
}

func TestRefresh_GarbageToken(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	userID := seedUser(t, db, "agarcia", "secret123", true)

	login, err := svc.Login(ctx, &services.LoginInput{Username: "agarcia", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, userID))

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)
}
