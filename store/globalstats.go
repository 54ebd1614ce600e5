package store

import (
	"context"

	"github.com/tagdex/tagdex/errors"
)

const globalStatsQuery = `
	SELECT
		(SELECT COUNT(DISTINCT user_id) FROM user_entities),
		(SELECT COUNT(*) FROM tags),
		(SELECT COUNT(*) FROM entities WHERE media_type = ?),
		(SELECT COUNT(*) FROM entities WHERE media_type = ?),
		(SELECT COUNT(*) FROM entities WHERE media_type = ?),
		(SELECT COUNT(*) FROM entities WHERE media_type = ?),
		(SELECT COALESCE(SUM(count), 0) FROM user_entities)`

// GetGlobalStats returns the read-only global counters: total users, total
// dictionary tags, entity counts per media type, and the sum of all
// selection events.
func (s *Store) GetGlobalStats(ctx context.Context) (GlobalStats, error) {
	var stats GlobalStats

	err := s.db.QueryRowContext(ctx, globalStatsQuery,
		MediaSticker, MediaAnimation, MediaPhoto, MediaVideo,
	).Scan(
		&stats.TotalUsers,
		&stats.TotalTags,
		&stats.TotalStickers,
		&stats.TotalAnimations,
		&stats.TotalPhotos,
		&stats.TotalVideos,
		&stats.TotalSelections,
	)
	if err != nil {
		return stats, errors.Wrap(err, "failed to query global stats")
	}
	return stats, nil
}
