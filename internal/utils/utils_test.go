package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Valid1Pass!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Valid1Pass!", hash)
	assert.True(t, VerifyPassword(hash, "Valid1Pass!"))
	assert.False(t, VerifyPassword(hash, "Valid1Pass?"))
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	a, err := HashPassword("Valid1Pass!", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("Valid1Pass!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_CostOutOfRangeUsesDefault(t *testing.T) {
	hash, err := HashPassword("Valid1Pass!", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 80), bcrypt.MinCost)
	assert.True(t, IsPasswordTooLong(err))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", AccessClaims{UserID: 9, Email: "a@b.c", Username: "Amit0007"}, time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.Exp, 2*time.Second)

	got, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, AccessClaims{UserID: 9, Email: "a@b.c", Username: "Amit0007"}, got)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken("r", 4, time.Hour)
	require.NoError(t, err)
	b, err := NewRefreshToken("r", 4, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	id, err := ParseRefreshToken("r", a.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := NewAccessToken("s", AccessClaims{UserID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("s", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutExpiryRejected(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("s"))
	require.NoError(t, err)
	_, err = ParseRefreshToken("s", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNoneAlgorithmRejected(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken("s", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
