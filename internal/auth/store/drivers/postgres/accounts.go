package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/jackc/pgx/v5"
)

type accountsRepo struct {
	q *queries
}

const accountColumns = `id, username, email, password_hash, full_name, phone_number,
	enabled, locked, two_fa_enabled, two_fa_secret, failed_login_attempts,
	last_login_at, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *accountsRepo) getBy(ctx context.Context, query string, arg string) (domain.Account, error) {
	a, err := scanAccount(r.q.db.QueryRow(ctx, query, arg))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	roles, err := r.rolesFor(ctx, a.ID)
	if err != nil {
		return domain.Account{}, err
	}
	a.Roles = roles

	return a, nil
}

func (r *accountsRepo) rolesFor(ctx context.Context, accountID string) ([]domain.Role, error) {
	rows, err := r.q.db.Query(ctx, `
		SELECT r.id, r.name, r.description, r.created_at
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = $1
		ORDER BY r.name`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *accountsRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username)
}

func (r *accountsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *accountsRepo) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.q.db.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		a.ID,
		a.Username,
		a.Email,
		a.PasswordHash,
		a.FullName,
		a.PhoneNumber,
		a.Enabled,
		a.Locked,
		a.TwoFAEnabled,
		optionalString(a.TwoFASecret),
		a.FailedLoginAttempts,
		a.LastLoginAt,
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapUnique(err)
	}

	if len(a.Roles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, role := range a.Roles {
		batch.Queue(`INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2)`, a.ID, role.ID)
	}
	br := r.q.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, role := range a.Roles {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("grant role %s: %w", role.Name, err)
		}
	}

	return nil
}

func (r *accountsRepo) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET failed_login_attempts = 0, last_login_at = $1, updated_at = $1
		WHERE id = $2`,
		at.UTC(), id,
	))
}

func (r *accountsRepo) IncrementFailedLogins(ctx context.Context, id string) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = now()
		WHERE id = $1`,
		id,
	))
}

func (r *accountsRepo) UpdateTwoFA(ctx context.Context, id string, enabled bool, secret string) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET two_fa_enabled = $1, two_fa_secret = $2, updated_at = now()
		WHERE id = $3`,
		enabled, optionalString(secret), id,
	))
}

func (r *accountsRepo) SetAccountStatus(ctx context.Context, id string, enabled, locked bool) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET enabled = $1, locked = $2, updated_at = now()
		WHERE id = $3`,
		enabled, locked, id,
	))
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var found bool
	if err := r.q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts)`).Scan(&found); err != nil {
		return false, err
	}
	return !found, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a         domain.Account
		secret    *string
		lastLogin *time.Time
	)

	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.PasswordHash,
		&a.FullName,
		&a.PhoneNumber,
		&a.Enabled,
		&a.Locked,
		&a.TwoFAEnabled,
		&secret,
		&a.FailedLoginAttempts,
		&lastLogin,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	if secret != nil {
		a.TwoFASecret = *secret
	}
	if lastLogin != nil {
		t := lastLogin.UTC()
		a.LastLoginAt = &t
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return a, nil
}

// optionalString stores "" as NULL.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
