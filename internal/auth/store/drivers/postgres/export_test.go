package postgres

import "context"

// ResetForTest drops every table so the next ApplyMigrations starts clean.
func (s *Store) ResetForTest(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		DROP TABLE IF EXISTS bootstrap_grant, account_roles, accounts, roles, schema_migrations`)
	return err
}
