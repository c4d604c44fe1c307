package postgres

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

type rolesRepo struct {
	q *queries
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name domain.RoleName) (domain.Role, error) {
	role, err := scanRole(r.q.db.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = $1`, string(name)))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.db.Query(ctx,
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
	_, err := r.q.db.Exec(ctx,
		`INSERT INTO roles (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		role.ID, string(role.Name), role.Description, role.CreatedAt.UTC(),
	)
	if err != nil {
		return mapUnique(err)
	}
	return nil
}

func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	return mapNotFound(r.q.execAffecting(ctx, `DELETE FROM roles WHERE id = $1`, id))
}

func scanRole(row pgx.Row) (domain.Role, error) {
	var (
		role domain.Role
		name string
	)
	if err := row.Scan(&role.ID, &name, &role.Description, &role.CreatedAt); err != nil {
		return domain.Role{}, err
	}

	role.Name = domain.RoleName(name)
	if !role.Name.Valid() {
		return domain.Role{}, fmt.Errorf("%w: unknown role name %q", store.ErrNotFound, name)
	}
	role.CreatedAt = role.CreatedAt.UTC()
	return role, nil
}
