// Package services provides external service integrations and technical concerns like tokens and revocation
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
		NewMemoryRevocationStore(),
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		issuer      string
		audience    string
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			issuer:      "test-issuer",
			audience:    "test-audience",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			issuer:      "test-issuer",
			audience:    "test-audience",
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "empty issuer and audience",
			issuer:      "",
			audience:    "",
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				15*time.Minute,
				7*24*time.Hour,
				tt.issuer,
				tt.audience,
				false,
				"",
				"",
				tt.secretKey,
				NewMemoryRevocationStore(),
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)

	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)

		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(time.Now()))
	})

	t.Run("valid refresh token", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)

		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("access and refresh carry distinct ids", func(t *testing.T) {
		accessClaims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		refreshClaims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)

		assert.NotEqual(t, accessClaims.TokenID, refreshClaims.TokenID)
	})

	t.Run("garbage token", func(t *testing.T) {
		claims, err := service.ValidateToken("not-a-jwt")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute,
			7*24*time.Hour,
			"test-issuer",
			"test-audience",
			false,
			"",
			"",
			"a-completely-different-32-char-secret!!!",
			NewMemoryRevocationStore(),
		)
		require.NoError(t, err)

		foreignToken, _, err := other.GenerateTokens(42)
		require.NoError(t, err)

		claims, err := service.ValidateToken(foreignToken)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestValidateTokenChecksIssuerAndAudience(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	// Same signing key, so only the claim checks can reject these
	mint := func(t *testing.T, issuer, audience string) string {
		t.Helper()
		other, err := NewTokenService(
			15*time.Minute,
			7*24*time.Hour,
			issuer,
			audience,
			false,
			"",
			"",
			"test-secret-key-for-jwt-signing-32-chars",
			NewMemoryRevocationStore(),
		)
		require.NoError(t, err)
		accessToken, _, err := other.GenerateTokens(42)
		require.NoError(t, err)
		return accessToken
	}

	t.Run("wrong issuer", func(t *testing.T) {
		claims, err := service.ValidateToken(mint(t, "other-issuer", "test-audience"))
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims, err := service.ValidateToken(mint(t, "test-issuer", "other-audience"))
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("matching issuer and audience", func(t *testing.T) {
		claims, err := service.ValidateToken(mint(t, "test-issuer", "test-audience"))
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
	})
}

func TestValidateExpiredToken(t *testing.T) {
	service, err := NewTokenService(
		-1*time.Minute, // already expired on issue
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
		NewMemoryRevocationStore(),
	)
	require.NoError(t, err)

	accessToken, _, err := service.GenerateTokens(42)
	require.NoError(t, err)

	claims, err := service.ValidateToken(accessToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	_, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)

	t.Run("valid refresh token yields a new pair", func(t *testing.T) {
		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)

		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)

		claims, err := service.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		accessToken, _, err := service.GenerateTokens(42)
		require.NoError(t, err)

		_, _, err = service.RefreshToken(accessToken)
		assert.Error(t, err)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		_, _, err := service.RefreshToken("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)

	assert.False(t, service.IsTokenRevoked(accessToken))

	require.NoError(t, service.RevokeToken(accessToken))

	assert.True(t, service.IsTokenRevoked(accessToken))

	_, err = service.ValidateToken(accessToken)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking the access token leaves the refresh token usable
	assert.False(t, service.IsTokenRevoked(refreshToken))
	_, err = service.ValidateToken(refreshToken)
	assert.NoError(t, err)
}

func TestRevokedRefreshTokenCannotBeReused(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	_, refreshToken, err := service.GenerateTokens(42)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(refreshToken))

	_, _, err = service.RefreshToken(refreshToken)
	assert.Error(t, err)
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("expired entries are forgotten", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-2", -time.Second))

		revoked, err := store.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
