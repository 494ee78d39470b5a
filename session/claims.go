package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt extracts the expiry claim from an access token without
// verifying the signature; the client never holds the signing key. The
// zero time is returned when the token is not a JWT or carries no exp
// claim.
func ExpiresAt(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Expired reports whether the access token is past its expiry, with
// leeway subtracted so a token about to lapse mid-request counts as
// expired. Opaque tokens (no readable exp claim) are never considered
// expired here; the server remains the authority via 401.
func Expired(token string, leeway time.Duration) bool {
	exp := ExpiresAt(token)
	if exp.IsZero() {
		return false
	}
	return time.Now().Add(leeway).After(exp)
}
