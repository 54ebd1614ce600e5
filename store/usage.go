package store

import (
	"context"
	"database/sql"

	"github.com/tagdex/tagdex/errors"
)

const usageIncreaseQuery = `
	INSERT INTO user_entities (user_id, entity_id, count, last_used, created_at)
	VALUES (?, ?, 1, ?, ?)
	ON CONFLICT (user_id, entity_id)
	DO UPDATE SET count = count + 1, last_used = excluded.last_used`

// Increase records one selection event for a (user, entity) pair: an
// atomic upsert that creates the stat row with count 1 or increments the
// existing one, stamping last_used either way. created_at is written only
// on first creation and never touched again.
func (s *Store) Increase(ctx context.Context, userID, entityID string) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, usageIncreaseQuery, userID, entityID, now, now)
	return errors.Wrapf(err, "failed to increase usage for entity %s", entityID)
}

// Get returns the usage record for a (user, entity) pair. An absent row is
// not an error: a zero-valued record is returned instead.
func (s *Store) Get(ctx context.Context, userID, entityID string) (UsageStat, error) {
	stat := UsageStat{UserID: userID, EntityID: entityID}

	err := s.db.QueryRowContext(ctx, `
		SELECT count, last_used, created_at FROM user_entities
		WHERE user_id = ? AND entity_id = ?`,
		userID, entityID,
	).Scan(&stat.Count, &stat.LastUsed, &stat.CreatedAt)
	if err == sql.ErrNoRows {
		return stat, nil
	}
	if err != nil {
		return stat, errors.Wrapf(err, "failed to get usage for entity %s", entityID)
	}
	return stat, nil
}
