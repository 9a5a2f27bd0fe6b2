package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	service := newTestService()
	partnerID := uuid.New()

	token, err := service.GenerateAccessToken(partnerID, "dana@reefdive.example", []string{"partner", "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, partnerID, claims.PartnerID)
	assert.Equal(t, "dana@reefdive.example", claims.Email)
	assert.Equal(t, []string{"partner", "admin"}, claims.Roles)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, partnerID.String(), claims.Subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	service := newTestService()
	partnerID := uuid.New()

	token, err := service.GenerateRefreshToken(partnerID, "dana@reefdive.example")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, partnerID, claims.PartnerID)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestTokenTypeMismatchIsRejected(t *testing.T) {
	service := newTestService()
	partnerID := uuid.New()

	access, err := service.GenerateAccessToken(partnerID, "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)
	refresh, err := service.GenerateRefreshToken(partnerID, "dana@reefdive.example")
	require.NoError(t, err)

	// Each token only validates against its own endpoint
	_, err = service.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = service.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestWrongSecretIsRejected(t *testing.T) {
	service := newTestService()
	other := NewService("different-secret", "different-refresh", 15*time.Minute, time.Hour)

	token, err := service.GenerateAccessToken(uuid.New(), "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	service := NewService("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := service.GenerateAccessToken(uuid.New(), "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.True(t, service.IsTokenExpired(token))
}

func TestIsTokenExpired(t *testing.T) {
	service := newTestService()

	token, err := service.GenerateAccessToken(uuid.New(), "dana@reefdive.example", []string{"partner"})
	require.NoError(t, err)
	assert.False(t, service.IsTokenExpired(token))

	assert.True(t, service.IsTokenExpired("not-a-token"))
}
