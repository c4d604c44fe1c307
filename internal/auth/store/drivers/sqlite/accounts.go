package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
)

type accountsRepo struct {
	q *queries
}

const accountColumns = `id, username, email, password_hash, full_name, phone_number,
	enabled, locked, two_fa_enabled, two_fa_secret, failed_login_attempts,
	last_login_at, created_at, updated_at`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
}

func (r *accountsRepo) getBy(ctx context.Context, query string, arg string) (domain.Account, error) {
	a, err := scanAccount(r.q.db.QueryRowContext(ctx, query, arg))
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
	rows, err := r.q.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.created_at
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = ?
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
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = ?)`, username)
}

func (r *accountsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = ?)`, email)
}

func (r *accountsRepo) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.q.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Username,
		a.Email,
		a.PasswordHash,
		a.FullName,
		a.PhoneNumber,
		a.Enabled,
		a.Locked,
		a.TwoFAEnabled,
		mapStringNull(a.TwoFASecret),
		a.FailedLoginAttempts,
		optionalTime(a.LastLoginAt),
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return mapUnique(err)
	}

	for _, role := range a.Roles {
		if _, err := r.q.db.ExecContext(ctx,
			`INSERT INTO account_roles (account_id, role_id) VALUES (?, ?)`,
			a.ID, role.ID,
		); err != nil {
			return fmt.Errorf("grant role %s: %w", role.Name, err)
		}
	}

	return nil
}

func (r *accountsRepo) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET failed_login_attempts = 0, last_login_at = ?, updated_at = ?
		WHERE id = ?`,
		formatTime(at), formatTime(at), id,
	))
}

func (r *accountsRepo) IncrementFailedLogins(ctx context.Context, id string) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = ?
		WHERE id = ?`,
		formatTime(time.Now()), id,
	))
}

func (r *accountsRepo) UpdateTwoFA(ctx context.Context, id string, enabled bool, secret string) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET two_fa_enabled = ?, two_fa_secret = ?, updated_at = ?
		WHERE id = ?`,
		enabled, mapStringNull(secret), formatTime(time.Now()), id,
	))
}

func (r *accountsRepo) SetAccountStatus(ctx context.Context, id string, enabled, locked bool) error {
	return mapNotFound(r.q.execAffecting(ctx, `
		UPDATE accounts
		SET enabled = ?, locked = ?, updated_at = ?
		WHERE id = ?`,
		enabled, locked, formatTime(time.Now()), id,
	))
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a         domain.Account
		secret    sql.NullString
		lastLogin sql.NullString
		created   string
		updated   string
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
		&created,
		&updated,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.TwoFASecret = mapNullString(secret)
	if a.LastLoginAt, err = mapNullTimePtr(lastLogin); err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return domain.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Account{}, err
	}

	return a, nil
}

func optionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
