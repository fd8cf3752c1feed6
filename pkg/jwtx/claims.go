package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for a browser/API session
// token. There is no refresh flow; clients re-authenticate when it
// expires.
const DefaultSessionTTL = 12 * time.Hour

// Claims are the session-token claims shared between the sign-in flow and
// the route authorization middleware. Keep changes additive.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the account's role name ("admin", "manager", "user", "client").
	Role string `json:"role,omitempty"`

	// Name is the account's display name.
	Name string `json:"name,omitempty"`

	// TwoFactor reports whether the session satisfied a second factor at
	// sign-in. Sessions for accounts with two-factor enabled always have it
	// set; others never do.
	TwoFactor bool `json:"tfa,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(
	subject, role, name string,
	twoFactor bool,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:      role,
		Name:      name,
		TwoFactor: twoFactor,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
