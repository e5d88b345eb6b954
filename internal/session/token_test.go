package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestPeekExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)

	got, err := PeekExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp), "want %v, got %v", exp, got)
}

func TestPeekExpiryMalformed(t *testing.T) {
	_, err := PeekExpiry("not-a-jwt")
	assert.Error(t, err)
}

func TestPeekExpiryMissingClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)

	_, err = PeekExpiry(signed)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, TokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.True(t, TokenExpired(signedToken(t, now.Add(-time.Hour)), now))
	assert.True(t, TokenExpired("garbage", now), "unparseable tokens count as expired")
}
