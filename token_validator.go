package session

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSValidator verifies access tokens against the platform's published
// JWK Set. Optional: when configured on a manager it pre-screens persisted
// tokens at startup instead of spending a profile fetch on a token that is
// locally known to be bad.
type JWKSValidator struct {
	jwks *keyfunc.JWKS
}

// JWKSValidatorConfig holds JWKS fetch settings.
type JWKSValidatorConfig struct {
	// URL of the JWK Set, e.g. https://api.example.com/.well-known/jwks.json
	URL string

	RefreshInterval time.Duration
}

// NewJWKSValidator fetches the key set and returns a validator. The set is
// refreshed in the background until the process exits.
func NewJWKSValidator(cfg JWKSValidatorConfig) (*JWKSValidator, error) {
	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = time.Hour
	}

	jwks, err := keyfunc.Get(cfg.URL, keyfunc.Options{
		RefreshInterval: refresh,
	})
	if err != nil {
		return nil, fmt.Errorf("session: unable to load JWK Set from %q: %w", cfg.URL, err)
	}

	return &JWKSValidator{jwks: jwks}, nil
}

// Validate implements TokenValidator.
func (v *JWKSValidator) Validate(tokenString string) error {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc)
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("session: token failed validation")
	}
	return nil
}
