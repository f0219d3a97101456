package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenSecret = []byte("token-secret")
	issuedAt    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestIssueAndValidate(t *testing.T) {
	raw, err := IssueToken(tokenSecret, "acct-1", issuedAt)
	require.NoError(t, err)

	c, err := ValidateToken(tokenSecret, raw, issuedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "acct-1", c.Subject)
	assert.True(t, issuedAt.Equal(c.IssuedAt))
	assert.True(t, issuedAt.Add(TokenLifetime).Equal(c.ExpiresAt))
}

func TestIssueToken_SubSecondNow(t *testing.T) {
	now := issuedAt.Add(700 * time.Millisecond)
	raw, err := IssueToken(tokenSecret, "acct-1", now)
	require.NoError(t, err)

	c, err := ValidateToken(tokenSecret, raw, now)
	require.NoError(t, err)
	assert.True(t, issuedAt.Equal(c.IssuedAt))
	assert.Equal(t, TokenLifetime, c.ExpiresAt.Sub(c.IssuedAt))

	_, err = ValidateToken(tokenSecret, raw, issuedAt.Add(TokenLifetime-time.Millisecond))
	assert.NoError(t, err)
	_, err = ValidateToken(tokenSecret, raw, issuedAt.Add(TokenLifetime))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// No clock-skew leeway is applied: the token dies at exactly iat+4h.
func TestValidateToken_ExpiryBoundary(t *testing.T) {
	raw, err := IssueToken(tokenSecret, "acct-1", issuedAt)
	require.NoError(t, err)

	_, err = ValidateToken(tokenSecret, raw, issuedAt.Add(TokenLifetime-time.Second))
	assert.NoError(t, err)

	_, err = ValidateToken(tokenSecret, raw, issuedAt.Add(TokenLifetime))
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = ValidateToken(tokenSecret, raw, issuedAt.Add(TokenLifetime+time.Second))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_BadSignature(t *testing.T) {
	raw, err := IssueToken([]byte("other-secret"), "acct-1", issuedAt)
	require.NoError(t, err)

	_, err = ValidateToken(tokenSecret, raw, issuedAt)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "acct-1",
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(tokenSecret)
	require.NoError(t, err)

	_, err = ValidateToken(tokenSecret, raw, issuedAt)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestValidateToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "a.b.c"} {
		_, err := ValidateToken(tokenSecret, raw, issuedAt)
		assert.ErrorIs(t, err, ErrTokenMalformed, "raw %q", raw)
	}
}

func TestValidateToken_MissingExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "acct-1"}).SignedString(tokenSecret)
	require.NoError(t, err)

	_, err = ValidateToken(tokenSecret, raw, issuedAt)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
