// Package credential decodes opaque bearer credentials into their claims.
// Decoding is a pure, local operation: the signature is trusted to the
// issuing server and only the claims payload is parsed.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedCredential is returned when a raw credential cannot be
// parsed as a signed-claims token.
var ErrMalformedCredential = errors.New("credential: malformed credential")

// Claims is the payload issued by the platform's token endpoint.
type Claims struct {
	UserID     int64    `json:"id"`
	Email      string   `json:"email"`
	IsEducator bool     `json:"is_educator"`
	IsActive   bool     `json:"is_active"`
	Scopes     []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the subject identity carried in the claims.
func (c *Claims) Username() string {
	return c.Subject
}

// IsExpired reports whether the claims are expired at the given instant.
// The boundary is closed: a credential is expired at exactly its expiry
// time, valid strictly before it. Claims without an expiry are treated
// as expired.
func (c *Claims) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return now.UnixMilli() >= c.ExpiresAt.Time.UnixMilli()
}

// Decode parses a raw credential string into its claims without
// verifying the signature. Decoding the same string twice yields
// identical claims. Returns ErrMalformedCredential (wrapped) when the
// string is not a parseable token.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	return claims, nil
}
