package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// defaultParams are applied by the modernc driver on every new connection.
// _txlock=immediate takes the write lock at BEGIN so concurrent registrations
// queue on busy_timeout instead of failing on upgrade.
var defaultParams = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_txlock=immediate",
}

type Store struct {
	db  *sql.DB
	q   *queries
	dsn string
}

var _ store.Store = (*Store)(nil)

// FileDSN is the DSN for an on-disk database in WAL mode.
func FileDSN(path string) string {
	return "file:" + path + "?_pragma=journal_mode(WAL)"
}

// NewStore opens dsn, a file path, a FileDSN or ":memory:". defaultParams
// are merged into any query string dsn already has; a pragma or _txlock the
// caller set explicitly is left alone.
func NewStore(dsn string) (*Store, error) {
	full := withDefaultParams(dsn)

	db, err := sql.Open("sqlite", full)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is its own database.
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}

	return &Store{
		db:  db,
		q:   newQueries(db),
		dsn: dsn,
	}, nil
}

func withDefaultParams(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")

	var params []string
	if query != "" {
		params = strings.Split(query, "&")
	}

	for _, def := range defaultParams {
		if !slices.ContainsFunc(params, func(p string) bool { return paramKey(p) == paramKey(def) }) {
			params = append(params, def)
		}
	}
	return base + "?" + strings.Join(params, "&")
}

// paramKey names what a parameter sets: the pragma for _pragma=name(value),
// otherwise the query key.
func paramKey(p string) string {
	key, value, _ := strings.Cut(p, "=")
	if key == "_pragma" {
		name, _, _ := strings.Cut(value, "(")
		return "_pragma:" + strings.ToLower(strings.TrimSpace(name))
	}
	return key
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call even after commit.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts   { return &accountsRepo{q: s.q} }
func (s *Store) Roles() store.Roles         { return &rolesRepo{q: s.q} }
func (s *Store) Bootstrap() store.Bootstrap { return &bootstrapRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapUnique turns a UNIQUE violation into the matching store error. The
// message names the offending column, e.g. "accounts.email".
func mapUnique(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	msg := se.Error()
	unique := se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		(se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE"))
	if !unique {
		return err
	}

	switch {
	case strings.Contains(msg, "accounts.username"):
		return store.ErrUsernameTaken
	case strings.Contains(msg, "accounts.email"):
		return store.ErrEmailTaken
	default:
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	}
}

// Timestamps are stored as RFC 3339 text in UTC so they sort lexically.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
