package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRevocations is an in-memory RevocationStore for tests
type fakeRevocations struct {
	mu sync.Mutex
	m  map[string]time.Time
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{m: make(map[string]time.Time)}
}

func (f *fakeRevocations) RevokeToken(jti string, userID int64, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[jti]; !ok {
		f.m[jti] = expiresAt
	}
	return nil
}

func (f *fakeRevocations) IsTokenRevoked(jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.m[jti]
	return ok, nil
}

func TestIssueAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, newFakeRevocations())

	token, err := tm.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestValidateExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, newFakeRevocations())

	token, err := tm.Issue(42)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateWrongKey(t *testing.T) {
	revoked := newFakeRevocations()
	tm := NewTokenManager("test-secret", time.Hour, revoked)
	other := NewTokenManager("other-secret", time.Hour, revoked)

	// Signed with a different key but carrying a still-future expiry: the
	// signature check must reject it as invalid, not expired.
	token, err := other.Issue(42)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongKeyExpired(t *testing.T) {
	revoked := newFakeRevocations()
	tm := NewTokenManager("test-secret", time.Hour, revoked)
	other := NewTokenManager("other-secret", -time.Minute, revoked)

	// Both the signature and the expiry are bad. The signature failure wins.
	token, err := other.Issue(42)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateMalformed(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, newFakeRevocations())

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := tm.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

func TestRevoke(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, newFakeRevocations())

	token, err := tm.Issue(42)
	require.NoError(t, err)

	// Valid before revocation
	_, err = tm.Validate(token)
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(token))

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	// Revoking again is a no-op
	assert.NoError(t, tm.Revoke(token))
}

func TestRevokeExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, newFakeRevocations())

	token, err := tm.Issue(42)
	require.NoError(t, err)

	// Logout with an already-expired token still succeeds
	assert.NoError(t, tm.Revoke(token))
}

func TestRevokeRejectsUntrustedTokens(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, newFakeRevocations())
	other := NewTokenManager("other-secret", time.Hour, newFakeRevocations())

	assert.ErrorIs(t, tm.Revoke("garbage"), ErrInvalidToken)

	token, err := other.Issue(42)
	require.NoError(t, err)
	assert.ErrorIs(t, tm.Revoke(token), ErrInvalidToken)
}

func TestRevokedOnlyAffectsThatToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, newFakeRevocations())

	first, err := tm.Issue(42)
	require.NoError(t, err)
	second, err := tm.Issue(42)
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(first))

	_, err = tm.Validate(first)
	assert.ErrorIs(t, err, ErrRevokedToken)

	// A fresh token for the same user keeps working
	userID, err := tm.Validate(second)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}
