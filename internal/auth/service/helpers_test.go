package service

import (
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testParams = cryptox.Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// testClock is a settable time source shared by every service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store    *sqlite.Store
	clock    *testClock
	hasher   *cryptox.Argon2Hasher
	tokens   *TokenService
	totp     *TOTPManager
	sessions *SessionService
	roles    *RolesService
	accounts *AccountService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithDSN(t, ":memory:")
}

func newHarnessWithDSN(t *testing.T, dsn string) *harness {
	t.Helper()

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "backoffice-test")
	require.NoError(t, err)

	clock := newTestClock()
	hasher := cryptox.NewArgon2Hasher("test-pepper").WithParams(testParams)
	tokens := &TokenService{Signer: signer, Now: clock.Now}
	totpMgr := &TOTPManager{Now: clock.Now}

	return &harness{
		store:  st,
		clock:  clock,
		hasher: hasher,
		tokens: tokens,
		totp:   totpMgr,
		sessions: &SessionService{
			Store:       st,
			Credentials: &CredentialVerifier{Store: st, Hasher: hasher},
			TOTP:        totpMgr,
			Tokens:      tokens,
			Hasher:      hasher,
			Now:         clock.Now,
		},
		roles:    &RolesService{Store: st},
		accounts: &AccountService{Store: st},
	}
}

func (h *harness) register(t *testing.T, username string) RegisterInput {
	t.Helper()
	in := RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-pw-" + username,
		FullName: "Test " + username,
	}
	_, err := h.sessions.Register(t.Context(), in)
	require.NoError(t, err)
	return in
}
