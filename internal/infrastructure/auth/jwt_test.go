package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	}
	return NewJWTService(cfg)
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                "test-secret",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	}

	svc := NewJWTService(cfg)

	assert.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.secret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.expiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
}

func TestGenerateToken(t *testing.T) {
	svc := newTestJWTService()

	token, expiresAt, err := svc.GenerateToken("storefront", []string{"shipping:write"})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
}

func TestValidateToken_Success(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateToken("storefront", []string{"shipping:read", "shipping:write"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "storefront", claims.ClientID)
	assert.Equal(t, "storefront", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, []string{"shipping:read", "shipping:write"}, claims.Scopes)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	svc := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not-a-jwt"},
		{"truncated token", "eyJhbGciOiJIUzI1NiJ9.eyJmb28i"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService()
	token, _, err := svc.GenerateToken("storefront", nil)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret-key",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -1 * time.Minute,
		Issuer:                "test-issuer",
	})
	token, _, err := svc.GenerateToken("storefront", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestClaims_HasScope(t *testing.T) {
	claims := &Claims{Scopes: []string{"shipping:read", "shipping:write"}}

	assert.True(t, claims.HasScope("shipping:read"))
	assert.True(t, claims.HasScope("shipping:write"))
	assert.False(t, claims.HasScope("admin"))

	empty := &Claims{}
	assert.False(t, empty.HasScope("shipping:read"))
}

func TestClaims_GetExpiresAtTime(t *testing.T) {
	svc := newTestJWTService()
	token, expiresAt, err := svc.GenerateToken("storefront", nil)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.WithinDuration(t, expiresAt, claims.GetExpiresAtTime(), time.Second)
}
