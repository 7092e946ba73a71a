package jwt_test

import (
	"testing"

	"stockwise-decd/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := jwt.GenerateAccessToken(42, "agarcia", "user",
		[]string{"dashboard", "loans"}, "test-secret", 15)
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "agarcia", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, []string{"dashboard", "loans"}, claims.Permissions)
}

func TestAccessToken_WrongSecretRejected(t *testing.T) {
	token, err := jwt.GenerateAccessToken(42, "agarcia", "user", nil, "test-secret", 15)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestAccessToken_ExpiredRejected(t *testing.T) {
	token, err := jwt.GenerateAccessToken(42, "agarcia", "user", nil, "test-secret", -1)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, "test-secret")
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := jwt.GenerateRefreshToken(42, "token-id-1", "refresh-secret", 7)
	require.NoError(t, err)

	claims, err := jwt.ValidateRefreshToken(token, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}
