package service

import (
	"testing"

	"github.com/aussiebroadwan/backoffice/pkg/idx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialVerifier(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	in := h.register(t, "alice")
	v := h.sessions.Credentials

	acct, err := v.Verify(ctx, "alice", in.Password)
	require.NoError(t, err)
	require.Equal(t, "alice", acct.Username)

	t.Run("unknown user", func(t *testing.T) {
		acct, err := v.Verify(ctx, "nobody", in.Password)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Empty(t, acct.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		acct, err := v.Verify(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.NotEmpty(t, acct.ID)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := v.Verify(ctx, "", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("username is case sensitive", func(t *testing.T) {
		_, err := v.Verify(ctx, "Alice", in.Password)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestCredentialVerifierAccountFlags(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	in := h.register(t, "alice")
	v := h.sessions.Credentials

	_, err := h.accounts.SetStatus(ctx, "admin", "alice", true, true)
	require.NoError(t, err)

	_, err = v.Verify(ctx, "alice", in.Password)
	require.ErrorIs(t, err, ErrAccountLocked)

	// Flags are only revealed to someone holding the password.
	_, err = v.Verify(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = h.accounts.SetStatus(ctx, "admin", "alice", false, true)
	require.NoError(t, err)

	_, err = v.Verify(ctx, "alice", in.Password)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestCredentialVerifierLegacyBcrypt(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "alice")

	acct, err := h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)

	legacy, err := bcrypt.GenerateFromPassword([]byte("imported-pw"), bcrypt.MinCost)
	require.NoError(t, err)

	// Imported accounts keep their bcrypt hash until the next password change.
	imported := acct
	imported.ID = idx.New().String()
	imported.Username = "legacy"
	imported.Email = "legacy@example.com"
	imported.PasswordHash = string(legacy)
	require.NoError(t, h.store.Accounts().CreateAccount(ctx, imported))

	_, err = h.sessions.Credentials.Verify(ctx, "legacy", "imported-pw")
	require.NoError(t, err)

	_, err = h.sessions.Credentials.Verify(ctx, "legacy", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
