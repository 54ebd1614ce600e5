package store

import (
	"context"
	"database/sql"

	"github.com/tagdex/tagdex/errors"
)

const entityUpsertQuery = `
	INSERT INTO entities (entity_id, file_ref, media_type)
	VALUES (?, ?, ?)
	ON CONFLICT (entity_id) DO UPDATE SET file_ref = excluded.file_ref`

// UpsertEntity records an entity, overwriting its file reference in place
// (platform references rotate and the stored pointer must follow). The
// media type is immutable once set: a mismatch is rejected with
// ErrMediaTypeMismatch and nothing is written.
func (s *Store) UpsertEntity(ctx context.Context, entity Entity) error {
	if !entity.MediaType.Valid() {
		return errors.Wrapf(errors.ErrUnknownMediaType, "%q", entity.MediaType)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := upsertEntityTx(ctx, tx, entity); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// upsertEntityTx is the transaction-scoped upsert shared by Add.
func upsertEntityTx(ctx context.Context, tx sqlExecer, entity Entity) error {
	var existing MediaType
	err := tx.QueryRowContext(ctx,
		"SELECT media_type FROM entities WHERE entity_id = ?", entity.EntityID,
	).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		// First encounter, insert below.
	case err != nil:
		return errors.Wrapf(err, "failed to look up entity %s", entity.EntityID)
	case existing != entity.MediaType:
		return errors.Wrapf(errors.ErrMediaTypeMismatch,
			"entity %s is %s, got %s", entity.EntityID, existing, entity.MediaType)
	}

	_, err = tx.ExecContext(ctx, entityUpsertQuery,
		entity.EntityID, entity.FileRef, entity.MediaType)
	return errors.Wrapf(err, "failed to upsert entity %s", entity.EntityID)
}
