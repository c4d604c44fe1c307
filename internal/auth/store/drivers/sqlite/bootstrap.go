package sqlite

import (
	"context"
	"time"
)

type bootstrapRepo struct {
	q *queries
}

func (r *bootstrapRepo) ClaimAdminGrant(ctx context.Context, accountID string, at time.Time) (bool, error) {
	res, err := r.q.db.ExecContext(ctx, `
		INSERT INTO bootstrap_grant (id, account_id, claimed_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		accountID, formatTime(at),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *bootstrapRepo) AdminGrant(ctx context.Context) (string, time.Time, error) {
	var accountID, claimed string
	err := r.q.db.QueryRowContext(ctx,
		`SELECT account_id, claimed_at FROM bootstrap_grant WHERE id = 1`,
	).Scan(&accountID, &claimed)
	if err != nil {
		return "", time.Time{}, mapNotFound(err)
	}

	at, err := parseTime(claimed)
	if err != nil {
		return "", time.Time{}, err
	}
	return accountID, at, nil
}
