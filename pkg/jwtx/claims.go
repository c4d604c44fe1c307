package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants for the back-office session flow.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token use values carried in the "token_use" claim so a refresh token can
// never be replayed as an access token and vice versa.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims are the claims carried by both access and refresh tokens. The
// subject is the account username.
type Claims struct {
	jwt.RegisteredClaims

	// Roles held by the subject at issuance, access tokens only. Stale until
	// the next issuance.
	Roles []string `json:"roles,omitempty"`

	// TokenUse is either "access" or "refresh".
	TokenUse string `json:"token_use"`
}

// NewAccessClaims builds access-token claims carrying role names.
func NewAccessClaims(subject string, roles []string, ttl time.Duration, issuer string, now time.Time) Claims {
	c := newClaims(subject, ttl, issuer, now)
	c.TokenUse = TokenUseAccess
	c.Roles = roles
	return c
}

// NewRefreshClaims builds refresh-token claims, no roles are embedded.
func NewRefreshClaims(subject string, ttl time.Duration, issuer string, now time.Time) Claims {
	c := newClaims(subject, ttl, issuer, now)
	c.TokenUse = TokenUseRefresh
	return c
}

func newClaims(subject string, ttl time.Duration, issuer string, now time.Time) Claims {
	now = now.UTC()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a random UUID for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// IsAccess reports whether the claims belong to an access token.
func (c *Claims) IsAccess() bool { return c.TokenUse == TokenUseAccess }

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool { return c.TokenUse == TokenUseRefresh }

// ValidateSubject checks the token was issued to the expected subject.
func (c *Claims) ValidateSubject(expected string) error {
	if c.Subject == "" || c.Subject != expected {
		return ErrSubject
	}
	return nil
}
