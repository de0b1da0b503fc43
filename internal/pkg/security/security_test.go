package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Greater(t, claims.RemainingTTL().Minutes(), float64(0))

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	_, err = ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ExtractSignature("not-a-token")
	assert.ErrorIs(t, err, ErrMalformedToken)

	expired := &UserClaims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.Zero(t, expired.RemainingTTL())
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NoError(t, CheckPasswordHash("secret123", hash))
	assert.Error(t, CheckPasswordHash("wrong", hash))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	_, err = HashPassword(strings.Repeat("p", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorIs(t, CheckPasswordHash("wrong", hash), ErrInvalidCredentials)
}

func TestNeedsRehash(t *testing.T) {
	prev := PasswordCost
	t.Cleanup(func() { PasswordCost = prev })

	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	PasswordCost = bcrypt.MinCost + 1
	assert.True(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("not-a-hash"))
}
