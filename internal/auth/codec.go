package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims describes the JWT payload: subject identity plus issuance and expiry
// timestamps. The jti claim keys the revocation denylist.
type Claims struct {
	jwt.RegisteredClaims
}

// encodeClaims signs claims into a compact token string.
func encodeClaims(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// decodeVerified parses a token, checks the signature and the expiry against
// the injected clock, and classifies failures into the rejection taxonomy.
func decodeVerified(raw string, secret []byte, now func() time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(now))
	if err != nil {
		return nil, NewRejectError(classifyParseError(err), err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, NewRejectError(ReasonMalformed, errors.New("invalid token claims"))
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, NewRejectError(ReasonMalformed, errors.New("missing required claims"))
	}
	return claims, nil
}

// decodeUnverified parses claims without checking the signature or expiry.
// Server code must never treat the result as an authorization decision; the
// typed result for callers is ClaimsView on the client side.
func decodeUnverified(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, NewRejectError(ReasonMalformed, err)
	}
	return claims, nil
}

func classifyParseError(err error) RejectReason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ReasonBadSignature
	default:
		return ReasonMalformed
	}
}
