package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// VerifiedPrincipal is the server-side result of a successful verification.
// It is a distinct type from the client's advisory ClaimsView so a decoded-
// but-unverified token can never stand in for an authorization result.
type VerifiedPrincipal struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken pairs a signed token with its claims.
type IssuedToken struct {
	Raw       string
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager owns the signing secret and default TTL for access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. The secret is validated at config
// load; an empty one here is a programming error, not a runtime condition.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Used by tests to cross the expiry
// boundary without sleeping.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a token for the subject with a fresh TTL.
func (tm *TokenManager) Issue(subject string) (*IssuedToken, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	raw, err := encodeClaims(claims, tm.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Raw:       raw,
		Subject:   subject,
		TokenID:   claims.ID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature and expiry and returns the principal the token
// vouches for. Side-effect free; failures are RejectError values.
func (tm *TokenManager) Verify(raw string) (*VerifiedPrincipal, error) {
	claims, err := decodeVerified(raw, tm.secret, tm.now)
	if err != nil {
		return nil, err
	}
	principal := &VerifiedPrincipal{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		principal.IssuedAt = claims.IssuedAt.Time
	}
	return principal, nil
}

// Refresh replaces a still-valid token with a new one for the same subject.
// Any valid token may be refreshed regardless of remaining lifetime; there is
// no "too early to refresh" window to race against.
func (tm *TokenManager) Refresh(raw string) (*IssuedToken, error) {
	principal, err := tm.Verify(raw)
	if err != nil {
		return nil, err
	}
	return tm.Issue(principal.Subject)
}
