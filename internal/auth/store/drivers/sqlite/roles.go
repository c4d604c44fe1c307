package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
)

type rolesRepo struct {
	q *queries
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	role, err := scanRole(r.q.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = ?`, string(name)))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]domain.Role, 0, len(domain.RoleNames))
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		role.ID, string(role.Name), role.Description, formatTime(role.CreatedAt),
	)
	if err != nil {
		return mapUnique(err)
	}
	return nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	return mapNotFound(r.q.execAffecting(ctx, `DELETE FROM roles WHERE id = ?`, id))
}

func scanRole(row rowScanner) (domain.Role, error) {
	var (
		role    domain.Role
		name    string
		created string
	)
	if err := row.Scan(&role.ID, &name, &role.Description, &created); err != nil {
		return domain.Role{}, err
	}

	role.Name = domain.RoleName(name)
	if !role.Name.Valid() {
		return domain.Role{}, fmt.Errorf("%w: unknown role name %q", store.ErrNotFound, name)
	}

	var err error
	if role.CreatedAt, err = parseTime(created); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}
