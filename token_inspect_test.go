package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openstage/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": jwt.NewNumericDate(expiry),
	})

	raw, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, expiry)

	got, err := session.TokenExpiry(raw)
	require.NoError(t, err)
	assert.Equal(t, expiry.Unix(), got.Unix())
}

func TestTokenExpiryRejectsGarbage(t *testing.T) {
	_, err := session.TokenExpiry("not-a-token")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	live := signedToken(t, now.Add(time.Hour))
	assert.False(t, session.TokenExpired(live, 0, now))
	assert.True(t, session.TokenExpired(live, 2*time.Hour, now), "expiring within skew counts")

	dead := signedToken(t, now.Add(-time.Minute))
	assert.True(t, session.TokenExpired(dead, 0, now))

	assert.True(t, session.TokenExpired("garbage", 0, now), "unparseable tokens count as expired")
}
