package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// AccountService holds the administrative account operations.
type AccountService struct {
	Store store.Store
}

// SetStatus enables/disables and locks/unlocks an account. Tokens already
// issued stay valid until expiry, but refresh and login are refused at once.
func (s *AccountService) SetStatus(ctx context.Context, actor, username string, enabled, locked bool) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to load account: %w", err)
	}

	if err := s.Store.Accounts().SetAccountStatus(ctx, acct.ID, enabled, locked); err != nil {
		return domain.Account{}, fmt.Errorf("failed to update account status: %w", err)
	}

	slogx.FromContext(ctx).Warn("account status changed",
		slog.String("actor", actor),
		slog.String("account_id", acct.ID),
		slog.Bool("enabled", enabled),
		slog.Bool("locked", locked),
	)

	acct.Enabled, acct.Locked = enabled, locked
	return acct, nil
}
