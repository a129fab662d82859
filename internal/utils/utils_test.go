package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken("secret", "5b1c0e0e-1111-4a4a-9b9b-000000000001", "ana@example.com", "customer", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

    c, err := ParseAccessToken("secret", tok.Token)
    require.NoError(t, err)
    assert.Equal(t, "5b1c0e0e-1111-4a4a-9b9b-000000000001", c.UserID)
    assert.Equal(t, "ana@example.com", c.Email)
    assert.Equal(t, "customer", c.Role)
}

func TestParseAccessTokenRejects(t *testing.T) {
    tok, err := NewAccessToken("secret", "u1", "a@b.c", "admin", 15)
    require.NoError(t, err)

    _, err = ParseAccessToken("other", tok.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    expired, err := NewAccessToken("secret", "u1", "a@b.c", "admin", -1)
    require.NoError(t, err)
    _, err = ParseAccessToken("secret", expired.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
    s, err := noSub.SignedString([]byte("secret"))
    require.NoError(t, err)
    _, err = ParseAccessToken("secret", s)
    assert.ErrorIs(t, err, ErrInvalidToken)

    _, err = ParseAccessToken("secret", "not-a-jwt")
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
    a, err := NewRefreshToken(7)
    require.NoError(t, err)
    b, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.Len(t, a.Raw, 96)
    assert.NotEqual(t, a.Raw, b.Raw)
    assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
    assert.Len(t, HashRefreshRaw(a.Raw), 64)
}

func TestPassword(t *testing.T) {
    h, err := HashPassword("s3cret-pass", bcrypt.MinCost)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(h, "s3cret-pass"))
    assert.False(t, VerifyPassword(h, "wrong"))
}
