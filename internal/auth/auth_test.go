package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
)

func TestPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hash)
	assert.True(t, VerifyPassword(hash, "pw123456"))
	assert.False(t, VerifyPassword(hash, "pw1234567"))
}

func TestTokenIssueVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Issue("user-1", "john@x.com")
	require.NoError(t, err)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, err := m.Issue("user-1", "john@x.com")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenTampered(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Issue("user-1", "john@x.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = m.Verify(tampered)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenForeignSecret(t *testing.T) {
	other := NewTokenManager("other-secret", time.Hour)
	token, err := other.Issue("user-1", "john@x.com")
	require.NoError(t, err)

	m := NewTokenManager("test-secret", time.Hour)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
