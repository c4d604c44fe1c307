package sqlite

import "context"

var WithDefaultParams = withDefaultParams

// PragmaForTest reads a pragma on one of the store's connections.
func (s *Store) PragmaForTest(ctx context.Context, name string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&v)
	return v, err
}
