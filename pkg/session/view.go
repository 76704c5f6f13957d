// Package session is the client-resident half of the token lifecycle: it
// holds the current token, watches its expiry, and coordinates proactive
// refresh against the server's /auth/refresh endpoint.
package session

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrNoToken reports an empty token slot.
var ErrNoToken = errors.New("no token stored")

// ClaimsView is the client's unverified read of a token's claims. Clients
// cannot hold the signing secret, so this is advisory only: it drives UX
// timing (countdowns, refresh prompts) and must never back an authorization
// decision. The server's VerifiedPrincipal is a different type for exactly
// that reason.
type ClaimsView struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DecodeView parses claims from a locally held token without checking the
// signature.
func DecodeView(raw string) (*ClaimsView, error) {
	if raw == "" {
		return nil, errors.New("empty token")
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("token has no expiry claim")
	}

	view := &ClaimsView{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		view.IssuedAt = claims.IssuedAt.Time
	}
	return view, nil
}

// Remaining returns the lifetime left at the given instant. Negative once the
// token has expired.
func (v *ClaimsView) Remaining(now time.Time) time.Duration {
	return v.ExpiresAt.Sub(now)
}
