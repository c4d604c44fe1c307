package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the smallest HMAC key NewHS256 accepts.
const MinKeySize = 32

// HS256 signs and verifies JWTs with a single shared HMAC-SHA256 key.
type HS256 struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewHS256 creates an HS256 signer/verifier. The key is copied so callers
// can zero their buffer afterwards.
func NewHS256(key []byte, issuer string) (*HS256, error) {
	if len(key) < MinKeySize {
		return nil, ErrWeakKey
	}

	k := make([]byte, len(key))
	copy(k, key)

	return &HS256{key: k, issuer: issuer, now: time.Now}, nil
}

// WithClock returns a copy of h that reads the current time from now.
func (h *HS256) WithClock(now func() time.Time) *HS256 {
	cp := *h
	cp.now = now
	return &cp
}

// Issuer returns the issuer stamped into and required from every token.
func (h *HS256) Issuer() string { return h.issuer }

// Sign takes your claims and turns them into a signed JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = h.issuer
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(h.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}

// Verify checks the signature, issuer and expiry of tokenStr. The algorithm
// is pinned to HS256, so "none" and asymmetric headers are rejected before
// the key is ever used.
//
// The returned error is one of ErrMalformed, ErrInvalidSig, ErrIssuer,
// ErrExpired or ErrInvalidClaim. ErrExpired is only returned for tokens whose
// signature checked out.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
		jwt.WithExpirationRequired(),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	var claims Claims
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return h.key, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	return claims, nil
}

// classify collapses golang-jwt errors onto our own. Order matters, a token
// can be both expired and carry the wrong issuer.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
