package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/pkg/cryptox"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// CredentialVerifier checks a username and password against the account store.
// It never writes; login bookkeeping belongs to SessionService.
type CredentialVerifier struct {
	Store  store.Store
	Hasher cryptox.Hasher
}

// Verify returns the matching account. Unknown usernames and wrong passwords
// are indistinguishable to the caller. Account flags are only consulted once
// the password has matched, so they never leak to someone without it.
//
// A wrong password for a known username still returns the account alongside
// ErrInvalidCredentials so the caller can count the failure.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	acct, err := v.Store.Accounts().GetAccountByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}

	if err := v.Hasher.Verify(password, acct.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			// Corrupt or unsupported hash in storage, still a refusal.
			l.Error("password hash could not be verified",
				slog.String("account_id", acct.ID),
				slog.Any("error", err),
			)
		}
		return acct, ErrInvalidCredentials
	}

	if err := acct.CanAuthenticate(); err != nil {
		return acct, err
	}

	return acct, nil
}
