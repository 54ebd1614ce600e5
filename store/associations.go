package store

import (
	"context"
	"strings"

	"github.com/tagdex/tagdex/errors"
)

const comboInsertQuery = `
	INSERT OR IGNORE INTO user_entities (user_id, entity_id, created_at)
	VALUES (?, ?, ?)`

// associationLinkQuery links one (user, entity) combo to every named tag,
// ignoring pairs that already exist. The tag name list is appended by the
// caller.
const associationLinkQuery = `
	INSERT OR IGNORE INTO associations (combo_id, tag_id)
	SELECT (SELECT combo_id FROM user_entities WHERE entity_id = ? AND user_id = ?), tag_id
	FROM tags WHERE tag_name IN `

// Add tags an entity for one user: ensures the tags exist in the
// dictionary, upserts the entity record, creates the (user, entity) combo
// if absent, then inserts the associations, ignoring ones that already
// exist. Empty input is a successful no-op. The whole call is one atomic
// transaction.
func (s *Store) Add(ctx context.Context, userID string, entity Entity, tagNames []string) error {
	if len(tagNames) == 0 {
		return nil
	}

	s.logger.Debugw("Adding tags",
		"user_id", userID,
		"entity_id", entity.EntityID,
		"tags", tagNames,
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := ensureTagsTx(ctx, tx, tagNames); err != nil {
		return err
	}

	if err := upsertEntityTx(ctx, tx, entity); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, comboInsertQuery, userID, entity.EntityID, s.now()); err != nil {
		return errors.Wrap(err, "failed to insert user entity")
	}

	query, args := inClause(associationLinkQuery, []any{entity.EntityID, userID}, tagNames)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to link associations")
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// Remove deletes the matching associations for one (user, entity) pair.
// Tags and entities stay behind even when nothing references them any
// more; the dictionary is append-only and entities may be referenced by
// other users. Empty input is a successful no-op.
func (s *Store) Remove(ctx context.Context, userID, entityID string, tagNames []string) error {
	if len(tagNames) == 0 {
		return nil
	}

	s.logger.Debugw("Removing tags",
		"user_id", userID,
		"entity_id", entityID,
		"tags", tagNames,
	)

	const prefix = `
		DELETE FROM associations
		WHERE combo_id IN (SELECT combo_id FROM user_entities WHERE user_id = ? AND entity_id = ?)
		AND tag_id IN (SELECT tag_id FROM tags WHERE tag_name IN `

	query, args := inClause(prefix, []any{userID, entityID}, tagNames)
	query += ")"

	_, err := s.db.ExecContext(ctx, query, args...)
	return errors.Wrap(err, "failed to remove associations")
}

// WipeEntity deletes every association for one (user, entity) pair.
func (s *Store) WipeEntity(ctx context.Context, userID, entityID string) error {
	s.logger.Debugw("Wiping entity", "user_id", userID, "entity_id", entityID)

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM associations
		WHERE combo_id IN (SELECT combo_id FROM user_entities WHERE user_id = ? AND entity_id = ?)`,
		userID, entityID)
	return errors.Wrap(err, "failed to wipe entity associations")
}

// WipeUser deletes all of a user's associations and usage stats. Tags and
// entities themselves stay: they may be referenced by other users.
func (s *Store) WipeUser(ctx context.Context, userID string) error {
	s.logger.Infow("Wiping user", "user_id", userID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM associations
		WHERE combo_id IN (SELECT combo_id FROM user_entities WHERE user_id = ?)`,
		userID); err != nil {
		return errors.Wrap(err, "failed to wipe associations")
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM user_entities WHERE user_id = ?", userID); err != nil {
		return errors.Wrap(err, "failed to wipe usage stats")
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM users WHERE user_id = ?", userID); err != nil {
		return errors.Wrap(err, "failed to wipe user record")
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// GetTags returns the current tag names for one (user, entity) pair,
// unordered; sort policy belongs to the caller.
func (s *Store) GetTags(ctx context.Context, userID, entityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_name FROM associations
		JOIN tags ON tags.tag_id = associations.tag_id
		JOIN user_entities ON user_entities.combo_id = associations.combo_id
		WHERE user_entities.user_id = ? AND user_entities.entity_id = ?`,
		userID, entityID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tags")
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan tag name")
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// inClause appends an (?, ?, …) list for values to a query prefix ending
// in "IN " and returns the query with its bind arguments.
func inClause(prefix string, leading []any, values []string) (string, []any) {
	var query strings.Builder
	query.WriteString(prefix)
	query.WriteString("(")

	args := make([]any, 0, len(leading)+len(values))
	args = append(args, leading...)
	for i, v := range values {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("?")
		args = append(args, v)
	}
	query.WriteString(")")

	return query.String(), args
}
