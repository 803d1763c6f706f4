package authapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether a stored auth token's exp claim has passed.
// The signature is not verified (the server remains the authority); this is
// only used to decide whether rehydration should attempt a refresh first.
// Unparseable tokens count as expired; tokens without an exp claim do not.
func TokenExpired(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
