package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/tagdex/tagdex/errors"
)

// ArchiveRecord is one entity in the export archive. The short JSON keys
// are the wire contract: archives round-trip through Export then Import
// without loss, and decoding tolerates unknown fields so future versions
// can add keys.
type ArchiveRecord struct {
	EntityID  string    `json:"id"`
	FileRef   string    `json:"fi"`
	MediaType MediaType `json:"tp"`
	Tags      []string  `json:"t"`
	Count     int64     `json:"c"`
	LastUsed  int64     `json:"lu"`
	CreatedAt int64     `json:"ca"`
}

const exportQuery = `
	SELECT ue.entity_id, e.file_ref, e.media_type,
	       group_concat(t.tag_name, ' ') AS tags,
	       ue.count, ue.last_used, ue.created_at
	FROM associations a
	JOIN tags t ON t.tag_id = a.tag_id
	JOIN user_entities ue ON ue.combo_id = a.combo_id
	JOIN entities e ON e.entity_id = ue.entity_id
	WHERE ue.user_id = ?
	GROUP BY ue.entity_id`

// Export produces a gzip-compressed JSON snapshot of every entity the user
// has tagged: id, file reference, media type, tag list, and the usage
// counters. Record order is unspecified.
func (s *Store) Export(ctx context.Context, userID string) ([]byte, error) {
	s.logger.Debugw("Exporting", "user_id", userID)

	rows, err := s.db.QueryContext(ctx, exportQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query export records")
	}
	defer rows.Close()

	records := []ArchiveRecord{}
	for rows.Next() {
		var rec ArchiveRecord
		var tags string
		if err := rows.Scan(&rec.EntityID, &rec.FileRef, &rec.MediaType,
			&tags, &rec.Count, &rec.LastUsed, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan export record")
		}
		// Tag names never contain whitespace after normalization, so the
		// space-joined group_concat splits back losslessly.
		rec.Tags = strings.Fields(tags)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read export records")
	}

	s.logger.Debugw("Exported", "user_id", userID, "records", len(records))

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal archive")
	}

	var buf bytes.Buffer
	compressor, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create compressor")
	}
	if _, err := compressor.Write(payload); err != nil {
		return nil, errors.Wrap(err, "failed to compress archive")
	}
	if err := compressor.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish archive")
	}

	return buf.Bytes(), nil
}

// Import restores an archive produced by Export into the user's data. The
// payload is decompressed and parsed before anything touches the store: a
// malformed archive aborts with ErrMalformedArchive and no side effects.
// A valid archive is applied as one atomic transaction, and the insert
// rules make re-importing an archive a no-op: tags are normalized,
// deduplicated and ensured; entity file references are upserted; usage
// rows are inserted only if absent (an import never regresses stats);
// associations are linked ignoring pairs that already exist.
func (s *Store) Import(ctx context.Context, userID string, archive []byte) error {
	decompressor, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return errors.Wrap(errors.ErrMalformedArchive, err.Error())
	}
	payload, err := io.ReadAll(decompressor)
	if err != nil {
		return errors.Wrap(errors.ErrMalformedArchive, err.Error())
	}

	var records []ArchiveRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return errors.Wrap(errors.ErrMalformedArchive, err.Error())
	}

	return s.importRecords(ctx, userID, records)
}

// importRecords is the transactional tail shared by Import and
// ImportLegacy. Records must already carry a valid media type.
func (s *Store) importRecords(ctx context.Context, userID string, records []ArchiveRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		if !rec.MediaType.Valid() {
			return errors.Wrapf(errors.ErrMalformedArchive,
				"entity %s: unknown media type %q", rec.EntityID, rec.MediaType)
		}
	}

	s.logger.Debugw("Importing", "user_id", userID, "records", len(records))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// Tags: normalize and deduplicate across the whole batch, then ensure.
	var allTags []string
	for _, rec := range records {
		allTags = append(allTags, rec.Tags...)
	}
	if err := ensureTagsTx(ctx, tx, NormalizeTags(allTags)); err != nil {
		return err
	}

	// Entities: refresh the file reference, leave an existing media type
	// untouched (the type is immutable; a stale record never flips it).
	for _, batch := range chunk(records, insertChunkSize/3) {
		var sb strings.Builder
		sb.WriteString("INSERT INTO entities (entity_id, file_ref, media_type) VALUES ")
		args := make([]any, 0, len(batch)*3)
		for i, rec := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?)")
			args = append(args, rec.EntityID, rec.FileRef, rec.MediaType)
		}
		sb.WriteString(" ON CONFLICT (entity_id) DO UPDATE SET file_ref = excluded.file_ref")
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return errors.Wrap(err, "failed to import entities")
		}
	}

	// Usage rows: insert-if-absent only. Existing counters must survive a
	// re-import unchanged.
	for _, batch := range chunk(records, insertChunkSize/5) {
		var sb strings.Builder
		sb.WriteString("INSERT OR IGNORE INTO user_entities (user_id, entity_id, count, last_used, created_at) VALUES ")
		args := make([]any, 0, len(batch)*5)
		for i, rec := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?, ?, ?)")
			args = append(args, userID, rec.EntityID, rec.Count, rec.LastUsed, rec.CreatedAt)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return errors.Wrap(err, "failed to import usage stats")
		}
	}

	// Associations: link every (entity, tag) pair, ignoring existing ones.
	for _, rec := range records {
		tags := NormalizeTags(rec.Tags)
		if len(tags) == 0 {
			continue
		}
		query, args := inClause(associationLinkQuery, []any{rec.EntityID, userID}, tags)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "failed to link associations for entity %s", rec.EntityID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	s.logger.Infow("Import complete", "user_id", userID, "records", len(records))
	return nil
}
