package postgres

import (
	"context"
	"time"
)

type bootstrapRepo struct {
	q *queries
}

// ClaimAdminGrant relies on the primary key: a concurrent claimer blocks on
// the row until the first transaction ends, then either inserts (rollback) or
// does nothing (commit).
func (r *bootstrapRepo) ClaimAdminGrant(ctx context.Context, accountID string, at time.Time) (bool, error) {
	tag, err := r.q.db.Exec(ctx, `
		INSERT INTO bootstrap_grant (id, account_id, claimed_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING`,
		accountID, at.UTC(),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *bootstrapRepo) AdminGrant(ctx context.Context) (string, time.Time, error) {
	var (
		accountID string
		claimedAt time.Time
	)
	err := r.q.db.QueryRow(ctx,
		`SELECT account_id, claimed_at FROM bootstrap_grant WHERE id = 1`,
	).Scan(&accountID, &claimedAt)
	if err != nil {
		return "", time.Time{}, mapNotFound(err)
	}
	return accountID, claimedAt.UTC(), nil
}
