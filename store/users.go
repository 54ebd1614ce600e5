package store

import (
	"context"
	"database/sql"

	"github.com/tagdex/tagdex/errors"
)

// LastRepairAt returns the epoch-millis timestamp of the user's last
// successful repair run, or 0 when the user has never run one.
func (s *Store) LastRepairAt(ctx context.Context, userID string) (int64, error) {
	var ts int64
	err := s.db.QueryRowContext(ctx,
		"SELECT last_repair_at FROM users WHERE user_id = ?", userID,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to get last repair time")
	}
	return ts, nil
}

// SetLastRepairAt records the timestamp of a completed repair run.
func (s *Store) SetLastRepairAt(ctx context.Context, userID string, ts int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, last_repair_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET last_repair_at = excluded.last_repair_at`,
		userID, ts)
	return errors.Wrap(err, "failed to set last repair time")
}
