package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixgeelhaar/rezai-admin/internal/errors"
)

// Claims is the informational subset of a bearer token.
type Claims struct {
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	IssuedAt  time.Time `json:"issuedAt,omitempty" yaml:"issuedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// Expired reports whether the token's own expiry has passed. The zero
// expiry never expires.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenClaims decodes the token without verifying its signature. The
// result is for display only and never used to deny access.
func TokenClaims(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthSessionCorrupt, "token is not a JWT", err)
	}

	rc, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, errors.New(errors.ErrCodeAuthSessionCorrupt, "invalid token claims")
	}

	c := &Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
