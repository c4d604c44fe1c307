package postgres

import (
	"context"

	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

// txStore keeps the ctx the transaction was opened with, since pgx needs one
// for Commit and Rollback.
type txStore struct {
	ctx context.Context
	tx  pgx.Tx
	q   *queries
}

func newTx(ctx context.Context, tx pgx.Tx) *txStore {
	return &txStore{
		ctx: ctx,
		tx:  tx,
		q:   newQueries(tx),
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit(t.ctx) }
func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.ErrTxClosed
}

func (t *txStore) Accounts() store.Accounts   { return &accountsRepo{q: t.q} }
func (t *txStore) Roles() store.Roles         { return &rolesRepo{q: t.q} }
func (t *txStore) Bootstrap() store.Bootstrap { return &bootstrapRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil }
