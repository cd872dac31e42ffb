package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim from an access token without verifying
// the signature. Verification is the service's job; the client only needs
// expiry to decide whether a renewal is worth attempting.
func TokenExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("session: token has no expiry claim")
	}

	return exp.Time, nil
}

// TokenExpired reports whether the token is expired, or will be within
// skew, at the given instant. Unparseable tokens count as expired.
func TokenExpired(raw string, skew time.Duration, now time.Time) bool {
	expiry, err := TokenExpiry(raw)
	if err != nil {
		return true
	}
	return !now.Add(skew).Before(expiry)
}
