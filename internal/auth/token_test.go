package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken_RoundTrip(t *testing.T) {
	token, secret, err := NewRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)

	userID, gotSecret, ok := SplitRefreshToken(token)
	require.True(t, ok)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, secret, gotSecret)
}

func TestNewRefreshToken_SecretsAreUnique(t *testing.T) {
	_, first, err := NewRefreshToken("user-1")
	require.NoError(t, err)
	_, second, err := NewRefreshToken("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSplitRefreshToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "nodot", ".secret", "user.", "."} {
		_, _, ok := SplitRefreshToken(raw)
		assert.False(t, ok, "raw %q should not parse", raw)
	}
}

func TestSplitRefreshToken_UUIDOwner(t *testing.T) {
	// UUID owner IDs contain dashes but no dots; the first dot is the divider.
	userID, secret, ok := SplitRefreshToken("3f8a1a6e-1f9b-4b6e-9d4b-2f1c9a8e7d6c.abc123")
	require.True(t, ok)
	assert.Equal(t, "3f8a1a6e-1f9b-4b6e-9d4b-2f1c9a8e7d6c", userID)
	assert.Equal(t, "abc123", secret)
}

func TestHasher_PasswordRoundTrip(t *testing.T) {
	hasher := NewHasher()

	hash, err := hasher.HashPassword("a-safe-password")
	require.NoError(t, err)

	assert.True(t, hasher.VerifyPassword("a-safe-password", hash))
	assert.False(t, hasher.VerifyPassword("wrong-password", hash))
}

func TestHasher_TokenRoundTrip(t *testing.T) {
	hasher := NewHasher()

	_, secret, err := NewRefreshToken("user-1")
	require.NoError(t, err)

	hash, err := hasher.HashToken(secret)
	require.NoError(t, err)

	assert.True(t, hasher.VerifyToken(secret, hash))
	assert.False(t, hasher.VerifyToken("other-secret", hash))
}
