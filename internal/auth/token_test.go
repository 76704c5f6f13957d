package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func managerAt(t *testing.T, ttl time.Duration, at time.Time) *TokenManager {
	t.Helper()
	return NewTokenManager(testSecret, ttl).WithClock(func() time.Time { return at })
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := managerAt(t, 30*time.Minute, now)

	issued, err := tm.Issue("pat@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, issued.Raw)
	require.NotEmpty(t, issued.TokenID)
	require.Equal(t, now.Add(30*time.Minute), issued.ExpiresAt)

	principal, err := tm.Verify(issued.Raw)
	require.NoError(t, err)
	require.Equal(t, "pat@example.com", principal.Subject)
	require.Equal(t, issued.TokenID, principal.TokenID)
	require.True(t, principal.ExpiresAt.Equal(issued.ExpiresAt))
}

func TestVerifyExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	tm := NewTokenManager(testSecret, 1800*time.Second).WithClock(func() time.Time { return clock })

	issued, err := tm.Issue("pat@example.com")
	require.NoError(t, err)

	// one second before expiry the token still verifies
	clock = issuedAt.Add(1799 * time.Second)
	_, err = tm.Verify(issued.Raw)
	require.NoError(t, err)

	// at exactly expiresAt the token is expired, never before
	clock = issuedAt.Add(1800 * time.Second)
	_, err = tm.Verify(issued.Raw)
	require.Error(t, err)
	require.Equal(t, ReasonExpired, ReasonOf(err))
}

func TestVerifyMalformedIsIdempotent(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute)

	_, err1 := tm.Verify("not-a-token")
	_, err2 := tm.Verify("not-a-token")
	require.Error(t, err1)
	require.Error(t, err2)
	require.Equal(t, ReasonOf(err1), ReasonOf(err2))
	require.Equal(t, ReasonMalformed, ReasonOf(err1))
}

func TestVerifyBadSignature(t *testing.T) {
	issuer := NewTokenManager("some-other-secret", time.Minute)
	issued, err := issuer.Issue("pat@example.com")
	require.NoError(t, err)

	tm := NewTokenManager(testSecret, time.Minute)
	_, err = tm.Verify(issued.Raw)
	require.Error(t, err)
	require.Equal(t, ReasonBadSignature, ReasonOf(err))
}

func TestRefreshSucceedsOnlyWhileValid(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	tm := NewTokenManager(testSecret, 30*time.Minute).WithClock(func() time.Time { return clock })

	issued, err := tm.Issue("pat@example.com")
	require.NoError(t, err)

	// refresh near expiry still works; there is no "too early" window either
	clock = issuedAt.Add(29 * time.Minute)
	refreshed, err := tm.Refresh(issued.Raw)
	require.NoError(t, err)
	require.Equal(t, "pat@example.com", refreshed.Subject)
	require.NotEqual(t, issued.Raw, refreshed.Raw)
	require.True(t, refreshed.ExpiresAt.After(issued.ExpiresAt))

	// an already-expired token can never be refreshed
	clock = issuedAt.Add(31 * time.Minute)
	_, err = tm.Refresh(issued.Raw)
	require.Error(t, err)
	require.Equal(t, ReasonExpired, ReasonOf(err))
}

func TestClaimsCodecRoundTrip(t *testing.T) {
	for _, ttl := range []time.Duration{time.Second, time.Minute, 24 * time.Hour} {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		tm := managerAt(t, ttl, now)

		issued, err := tm.Issue("round-trip@example.com")
		require.NoError(t, err)

		claims, err := decodeUnverified(issued.Raw)
		require.NoError(t, err)
		require.Equal(t, "round-trip@example.com", claims.Subject)
		require.True(t, claims.IssuedAt.Time.Equal(now))
		require.True(t, claims.ExpiresAt.Time.Equal(now.Add(ttl)))
	}
}

func TestRevokedReasonWiresAsExpired(t *testing.T) {
	require.Equal(t, ReasonExpired, ReasonRevoked.Wire())
	require.Equal(t, ReasonBadSignature, ReasonBadSignature.Wire())
}
