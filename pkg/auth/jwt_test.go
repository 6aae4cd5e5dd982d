package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() JWTService {
	return NewJWTService(Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "dr.smith@example.com", []string{"psychologist"}, "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "dr.smith@example.com", claims.Email)
	assert.Equal(t, []string{"psychologist"}, claims.Roles)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestRefreshTokenNotValidAsAccessToken(t *testing.T) {
	svc := newTestService()

	refresh, err := svc.GenerateRefreshToken(uuid.New(), "dr.smith@example.com", "sess-1")
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err, "refresh token signed with a different secret must be rejected")

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService(Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        -time.Minute,
		RefreshExpiry: time.Hour,
	})

	token, err := svc.GenerateAccessToken(uuid.New(), "dr.smith@example.com", nil, "sess-1")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
