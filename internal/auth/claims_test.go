package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenClaims(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	c, err := TokenClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.True(t, c.IssuedAt.IsZero())
	assert.False(t, c.Expired(exp.Add(-time.Hour)))
	assert.True(t, c.Expired(exp.Add(time.Hour)))
}

func TestTokenClaimsOpaqueToken(t *testing.T) {
	_, err := TokenClaims("not-a-jwt")
	assert.Error(t, err)
}
