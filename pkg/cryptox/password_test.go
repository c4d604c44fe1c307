package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Cheap parameters keep the suite fast, the format is the same.
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func newTestHasher(pepper string) *Argon2Hasher {
	return NewArgon2Hasher(pepper).WithParams(testParams)
}

func TestHash(t *testing.T) {
	h := newTestHasher("pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "m=1024,t=1,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestDefaultParamsEncoded(t *testing.T) {
	hash, err := NewArgon2Hasher("").Hash("pw")
	require.NoError(t, err)
	require.Contains(t, hash, "$m=19456,t=2,p=1$")
}

func TestHash_UniqueSalts(t *testing.T) {
	h := newTestHasher("pepper")

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestVerify_WrongPassword(t *testing.T) {
	h := newTestHasher("pepper")
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor"} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrMismatch, wrong)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	hash, err := newTestHasher("pepper-a").Hash("secret")
	require.NoError(t, err)

	require.ErrorIs(t, newTestHasher("pepper-b").Verify("secret", hash), ErrMismatch)
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	h := newTestHasher("pepper")

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"unknown algorithm", "$scrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2a$12$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify("test-password", tt.invalidHash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrMismatch)
		})
	}
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("imported-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, IsLegacyHash(string(legacy)))

	// The pepper is not applied to legacy hashes.
	h := newTestHasher("pepper")
	require.NoError(t, h.Verify("imported-pw", string(legacy)))
	require.ErrorIs(t, h.Verify("other", string(legacy)), ErrMismatch)
}

func TestIsLegacyHash(t *testing.T) {
	require.True(t, IsLegacyHash("$2b$12$abc"))
	require.True(t, IsLegacyHash("$2y$12$abc"))
	require.False(t, IsLegacyHash("$argon2id$v=19$"))
	require.False(t, IsLegacyHash(""))
}
