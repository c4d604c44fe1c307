package service

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func TestRegisterBootstrapsAdminThenOps(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()

	a, err := h.sessions.Register(ctx, RegisterInput{
		Username: "a", Email: "A@Example.com ", Password: "pw-a", FullName: "User A",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ADMIN"}, a.User.Roles)
	require.Equal(t, "a@example.com", a.User.Email)
	require.False(t, a.User.TwoFAEnabled)
	require.Equal(t, "Bearer", a.TokenType)

	b, err := h.sessions.Register(ctx, RegisterInput{
		Username: "b", Email: "b@example.com", Password: "pw-b", FullName: "User B",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"OPS"}, b.User.Roles)

	pa, err := h.sessions.Profile(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"ADMIN"}, pa.Roles)

	pb, err := h.sessions.Profile(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"OPS"}, pb.Roles)

	ops, err := h.store.Roles().GetRoleByName(ctx, domain.RoleOps)
	require.NoError(t, err)
	require.Equal(t, "Operations staff with limited access", ops.Description)

	who, _, err := h.store.Bootstrap().AdminGrant(ctx)
	require.NoError(t, err)
	require.Equal(t, pa.ID, who)

	acct, err := h.store.Accounts().GetAccountByUsername(ctx, "b")
	require.NoError(t, err)
	require.True(t, acct.Enabled)
	require.False(t, acct.Locked)
	require.Zero(t, acct.FailedLoginAttempts)
	require.NotEqual(t, "pw-b", acct.PasswordHash)
}

func TestRegisterDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "alice")

	_, err := h.sessions.Register(ctx, RegisterInput{Username: "alice", Email: "new@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = h.sessions.Register(ctx, RegisterInput{Username: "alice2", Email: "ALICE@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"empty username", RegisterInput{Email: "x@example.com", Password: "pw"}},
		{"padded username", RegisterInput{Username: " x ", Email: "x@example.com", Password: "pw"}},
		{"empty password", RegisterInput{Username: "x", Email: "x@example.com"}},
		{"bad email", RegisterInput{Username: "x", Email: "not-an-email", Password: "pw"}},
		{"display-name email", RegisterInput{Username: "x", Email: "X <x@example.com>", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.sessions.Register(ctx, tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	empty, err := h.store.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestRegisterMissingAdminRole(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()

	admin, err := h.store.Roles().GetRoleByName(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, h.store.Roles().DeleteRole(ctx, admin.ID))

	_, err = h.sessions.Register(ctx, RegisterInput{Username: "a", Email: "a@example.com", Password: "pw"})
	require.ErrorIs(t, err, ErrMissingRole)

	empty, err := h.store.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	_, _, err = h.store.Bootstrap().AdminGrant(ctx)
	require.ErrorIs(t, err, store.ErrNotFound, "failed registration must release the claim")
}

func TestConcurrentFirstRegistrationsGrantOneAdmin(t *testing.T) {
	h := newHarnessWithDSN(t, sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	ctx := t.Context()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.sessions.Register(ctx, RegisterInput{
				Username: fmt.Sprintf("user%d", i),
				Email:    fmt.Sprintf("user%d@example.com", i),
				Password: "pw",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	admins, ops := 0, 0
	for i := range n {
		p, err := h.sessions.Profile(ctx, fmt.Sprintf("user%d", i))
		require.NoError(t, err)
		switch {
		case slices.Equal(p.Roles, []string{"ADMIN"}):
			admins++
		case slices.Equal(p.Roles, []string{"OPS"}):
			ops++
		}
	}
	require.Equal(t, 1, admins)
	require.Equal(t, n-1, ops)
}

func TestLoginWithoutTwoFA(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "admin")
	in := h.register(t, "alice")

	res, err := h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password})
	require.NoError(t, err)
	require.EqualValues(t, 900, res.ExpiresIn)
	require.Equal(t, []string{"OPS"}, res.User.Roles)

	claims, err := h.tokens.Validate(ctx, res.AccessToken, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"OPS"}, claims.Roles)

	acct, err := h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, acct.LastLoginAt)
	require.True(t, h.clock.Now().Equal(*acct.LastLoginAt))
}

func TestLoginFailuresCountAndReset(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	in := h.register(t, "alice")

	for range 3 {
		_, err := h.sessions.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	acct, err := h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 3, acct.FailedLoginAttempts)

	_, err = h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password})
	require.NoError(t, err)

	acct, err = h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, acct.FailedLoginAttempts)
}

func TestLoginWithTwoFA(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	in := h.register(t, "alice")

	enrollment, err := h.sessions.EnableTwoFA(ctx, "alice")
	require.NoError(t, err)

	// Pending enrollment does not yet gate login.
	_, err = h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password})
	require.NoError(t, err)

	code, err := h.totp.GenerateCode(enrollment.Secret, h.clock.Now())
	require.NoError(t, err)
	require.NoError(t, h.sessions.ConfirmTwoFA(ctx, "alice", code))

	_, err = h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password})
	require.ErrorIs(t, err, ErrCodeRequired)

	_, err = h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password, TwoFACode: wrongCode(code)})
	require.ErrorIs(t, err, ErrInvalidCode)

	acct, err := h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, acct.FailedLoginAttempts)

	res, err := h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password, TwoFACode: code})
	require.NoError(t, err)
	require.True(t, res.User.TwoFAEnabled)

	acct, err = h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Zero(t, acct.FailedLoginAttempts)
}

func TestTwoFARoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "alice")

	require.ErrorIs(t, h.sessions.DisableTwoFA(ctx, "alice"), ErrNotEnabled)
	require.ErrorIs(t, h.sessions.ConfirmTwoFA(ctx, "alice", "123456"), ErrNotEnabled)

	enable := func() {
		enrollment, err := h.sessions.EnableTwoFA(ctx, "alice")
		require.NoError(t, err)
		code, err := h.totp.GenerateCode(enrollment.Secret, h.clock.Now())
		require.NoError(t, err)
		require.NoError(t, h.sessions.ConfirmTwoFA(ctx, "alice", code))
	}

	enable()
	p, err := h.sessions.Profile(ctx, "alice")
	require.NoError(t, err)
	require.True(t, p.TwoFAEnabled)

	_, err = h.sessions.EnableTwoFA(ctx, "alice")
	require.ErrorIs(t, err, ErrAlreadyEnabled)

	require.NoError(t, h.sessions.DisableTwoFA(ctx, "alice"))
	acct, err := h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.TwoFADisabled, acct.TwoFAState())
	require.Empty(t, acct.TwoFASecret)

	enable()
	acct, err = h.store.Accounts().GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.TwoFAEnabled, acct.TwoFAState())
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "admin")
	in := h.register(t, "alice")

	res, err := h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password})
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	pair, err := h.sessions.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.AccessToken, pair.AccessToken)

	claims, err := h.tokens.Validate(ctx, pair.AccessToken, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"OPS"}, claims.Roles)

	t.Run("access token refused", func(t *testing.T) {
		_, err := h.sessions.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("disabled account refused", func(t *testing.T) {
		_, err := h.accounts.SetStatus(ctx, "admin", "alice", false, false)
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = h.accounts.SetStatus(ctx, "admin", "alice", true, false) })

		_, err = h.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("expired", func(t *testing.T) {
		h.clock.Advance(8 * 24 * time.Hour)
		_, err := h.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestRefreshUnknownSubject(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()

	token, err := h.tokens.IssueRefreshToken("ghost")
	require.NoError(t, err)

	_, err = h.sessions.Refresh(ctx, token)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLogoutIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	in := h.register(t, "alice")

	res, err := h.sessions.Login(ctx, LoginInput{Username: "alice", Password: in.Password})
	require.NoError(t, err)

	require.NoError(t, h.sessions.Logout(ctx, "alice"))

	// Tokens outlive logout.
	_, err = h.tokens.Validate(ctx, res.AccessToken, "alice")
	require.NoError(t, err)
}

func TestRolesService(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "a")
	h.register(t, "b")

	roles, err := h.roles.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, domain.RoleAdmin, roles[0].Name)
	require.Equal(t, domain.RoleOps, roles[1].Name)
}

func TestAccountServiceSetStatus(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.register(t, "alice")

	acct, err := h.accounts.SetStatus(ctx, "root", "alice", false, true)
	require.NoError(t, err)
	require.False(t, acct.Enabled)
	require.True(t, acct.Locked)

	_, err = h.accounts.SetStatus(ctx, "root", "nobody", true, false)
	require.ErrorIs(t, err, ErrAccountNotFound)
}
