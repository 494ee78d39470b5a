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
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.Equal(t, exp.Unix(), ExpiresAt(signedToken(t, exp)).Unix())
}

func TestExpiresAtOpaqueToken(t *testing.T) {
	assert.True(t, ExpiresAt("not-a-jwt").IsZero())
	assert.True(t, ExpiresAt("").IsZero())
}

func TestExpired(t *testing.T) {
	assert.True(t, Expired(signedToken(t, time.Now().Add(-time.Minute)), 0))
	assert.False(t, Expired(signedToken(t, time.Now().Add(time.Hour)), 0))

	// Leeway pushes a soon-to-expire token over the line
	soon := signedToken(t, time.Now().Add(10*time.Second))
	assert.False(t, Expired(soon, 0))
	assert.True(t, Expired(soon, 30*time.Second))

	// Opaque tokens are never locally expired
	assert.False(t, Expired("opaque-token", time.Hour))
}
