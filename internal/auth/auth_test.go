package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	require.NoError(t, CheckPassword(hash, "s3cret"))
	require.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue(Principal{ID: 42, Kind: KindCustomer})
	require.NoError(t, err)

	p, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, KindCustomer, p.Kind)
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue(Principal{ID: 42, Kind: KindCustomer})
	require.NoError(t, err)

	// Shift the verifier's clock past the expiry.
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = tokens.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_WrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a", time.Hour).Issue(Principal{ID: 1, Kind: KindRestaurant})
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_ParseBearer(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	signed, err := tokens.Issue(Principal{ID: 7, Kind: KindRestaurant})
	require.NoError(t, err)

	p, err := tokens.ParseBearer("Bearer " + signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, KindRestaurant, p.Kind)

	_, err = tokens.ParseBearer(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.ParseBearer("")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.ParseBearer("Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_GarbageToken(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	_, err := tokens.Parse("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
