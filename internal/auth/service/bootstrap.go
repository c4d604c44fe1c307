package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/pkg/idx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"
)

// errRoleRace means another transaction created the default role between our
// read and our insert. The registration is retried once from the top.
var errRoleRace = errors.New("default role created concurrently")

// initialRole picks the role a new account starts with. The first account
// ever registered claims the single bootstrap marker and becomes ADMIN. The
// marker's primary key makes the claim atomic, so a second registration that
// also saw an empty table gets OPS instead.
//
// Must run inside the registration transaction so a failed registration
// releases its claim.
func initialRole(ctx context.Context, tx store.Tx, accountID string, now time.Time) (domain.Role, error) {
	l := slogx.FromContext(ctx)

	empty, err := tx.Accounts().IsEmpty(ctx)
	if err != nil {
		return domain.Role{}, fmt.Errorf("failed to count accounts: %w", err)
	}

	if empty {
		claimed, err := tx.Bootstrap().ClaimAdminGrant(ctx, accountID, now)
		if err != nil {
			return domain.Role{}, fmt.Errorf("failed to claim bootstrap grant: %w", err)
		}

		if claimed {
			admin, err := tx.Roles().GetRoleByName(ctx, domain.RoleAdmin)
			if errors.Is(err, store.ErrNotFound) {
				l.Error("bootstrap registration found no ADMIN role")
				return domain.Role{}, ErrMissingRole
			}
			if err != nil {
				return domain.Role{}, fmt.Errorf("failed to load ADMIN role: %w", err)
			}

			l.Warn("bootstrap ADMIN granted to first account", slog.String("account_id", accountID))
			return admin, nil
		}
	}

	return ensureRole(ctx, tx, domain.RoleOps, now)
}

// ensureRole returns the named role, creating it with its default
// description on first use.
func ensureRole(ctx context.Context, tx store.Tx, name domain.RoleName, now time.Time) (domain.Role, error) {
	role, err := tx.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, fmt.Errorf("failed to load %s role: %w", name, err)
	}

	role = domain.Role{
		ID:          idx.NewAt(now).String(),
		Name:        name,
		Description: name.DefaultDescription(),
		CreatedAt:   now,
	}
	if err := tx.Roles().CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, errRoleRace
		}
		return domain.Role{}, fmt.Errorf("failed to create %s role: %w", name, err)
	}

	slogx.FromContext(ctx).Info("created default role", slog.String("role", string(name)))
	return role, nil
}
