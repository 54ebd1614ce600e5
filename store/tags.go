package store

import (
	"context"
	"strings"

	"github.com/tagdex/tagdex/errors"
)

// EnsureTags inserts every name into the tag dictionary that is not
// already present. Idempotent: re-inserting an existing name is a no-op,
// never an error. The dictionary is append-only; nothing in the normal
// write path ever deletes a tag.
func (s *Store) EnsureTags(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := ensureTagsTx(ctx, tx, names); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// ensureTagsTx is the transaction-scoped insert shared by Add and Import.
func ensureTagsTx(ctx context.Context, tx sqlExecer, names []string) error {
	for _, batch := range chunk(names, insertChunkSize) {
		var query strings.Builder
		query.WriteString("INSERT OR IGNORE INTO tags (tag_name) VALUES ")

		args := make([]any, 0, len(batch))
		for i, name := range batch {
			if i > 0 {
				query.WriteString(", ")
			}
			query.WriteString("(?)")
			args = append(args, name)
		}

		if _, err := tx.ExecContext(ctx, query.String(), args...); err != nil {
			return errors.Wrap(err, "failed to insert tags")
		}
	}
	return nil
}
