package jwtx

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SigningKeyInfo is the HKDF context label for the token signing key.
const SigningKeyInfo = "backoffice-auth/jwt-hs256/v1"

// DeriveHMACKey stretches a configured secret into a MinKeySize HMAC key
// using HKDF-SHA256. Call it once at start-up, not per request.
func DeriveHMACKey(secret []byte, info string) ([]byte, error) {
	if len(secret) < MinKeySize {
		return nil, ErrWeakKey
	}

	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	key := make([]byte, MinKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("jwtx: derive key: %w", err)
	}
	return key, nil
}
