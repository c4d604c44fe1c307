package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// Unique violations on accounts, both match ErrAlreadyExists.
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrAlreadyExists)
	ErrEmailTaken    = fmt.Errorf("%w: email", ErrAlreadyExists)
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx cannot open a transaction within a transaction.
type Store interface {
	Accounts() Accounts
	Roles() Roles
	Bootstrap() Bootstrap

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account with its roles loaded.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used at login and for every token subject.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetAccountByEmail returns an account with its roles loaded.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// UsernameExists and EmailExists back the registration pre-checks.
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// CreateAccount inserts the account and grants a.Roles (by role id).
	// Unique violations surface as ErrUsernameTaken or ErrEmailTaken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// RecordLogin resets failed_login_attempts and sets last_login_at.
	RecordLogin(ctx context.Context, id string, at time.Time) error

	// IncrementFailedLogins bumps failed_login_attempts by one.
	IncrementFailedLogins(ctx context.Context, id string) error

	// UpdateTwoFA persists the flag and secret together. An empty secret is
	// stored as NULL.
	UpdateTwoFA(ctx context.Context, id string, enabled bool, secret string) error

	// SetAccountStatus sets the enabled and locked flags.
	SetAccountStatus(ctx context.Context, id string, enabled, locked bool) error

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	// GetRoleByName looks up one of the fixed roles.
	GetRoleByName(ctx context.Context, name domain.RoleName) (domain.Role, error)

	// ListAll returns every role ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a role. A duplicate name is ErrAlreadyExists.
	CreateRole(ctx context.Context, r domain.Role) error

	// DeleteRole removes a role and its grants.
	DeleteRole(ctx context.Context, id string) error
}

// Bootstrap guards the one implicit ADMIN grant. The marker is a single row
// so at most one claim can ever succeed, whatever the isolation level.
type Bootstrap interface {
	// ClaimAdminGrant records accountID as the bootstrap admin. It returns
	// false without error when the grant was already claimed.
	ClaimAdminGrant(ctx context.Context, accountID string, at time.Time) (bool, error)

	// AdminGrant returns who claimed the grant and when, or ErrNotFound.
	AdminGrant(ctx context.Context) (accountID string, claimedAt time.Time, err error)
}
