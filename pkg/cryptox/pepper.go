package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PepperSize is the number of random bytes in a generated pepper.
const PepperSize = 32

// LoadOrGenerateSecret reads a base64url secret from path, creating the file
// with size fresh random bytes when it does not exist yet. The pepper and the
// token signing secret are both kept this way.
func LoadOrGenerateSecret(path string, size int) ([]byte, error) {
	path = filepath.Clean(path)

	raw, err := os.ReadFile(path)
	if err == nil {
		secret, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("decode secret %s: %w", path, err)
		}
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read secret %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	encoded := base64.RawURLEncoding.EncodeToString(secret)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("write secret %s: %w", path, err)
	}

	return secret, nil
}

// LoadOrGeneratePepper returns the pepper stored at path as a string, ready
// to hand to NewArgon2Hasher.
func LoadOrGeneratePepper(path string) (string, error) {
	secret, err := LoadOrGenerateSecret(path, PepperSize)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(secret), nil
}
