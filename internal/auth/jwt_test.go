package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "42", "player@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "player@example.com", claims.Email)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "42", "player@example.com", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("a-different-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, "42", "player@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken(testSecret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
