package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken(42)
	require.NoError(t, err)

	userID, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.GenerateToken(42)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.GenerateToken(42)
	require.NoError(t, err)

	_, err = issuer.ValidateToken(token)
	assert.Error(t, err)
}
