package store

import (
	"context"
	"strings"

	"github.com/tagdex/tagdex/errors"
)

// Sort is the closed set of result orderings.
type Sort int

const (
	MostUsed Sort = iota
	LeastUsed
	LastAdded
	FirstAdded
	LastUsed
	FirstUsed
	Random
)

var sortNames = map[Sort]string{
	MostUsed:   "most_used",
	LeastUsed:  "least_used",
	LastAdded:  "last_added",
	FirstAdded: "first_added",
	LastUsed:   "last_used",
	FirstUsed:  "first_used",
	Random:     "random",
}

func (s Sort) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSort maps a sort keyword onto the closed set.
func ParseSort(name string) (Sort, error) {
	for sort, n := range sortNames {
		if n == name {
			return sort, nil
		}
	}
	return MostUsed, errors.Newf("unknown sort %q", name)
}

// orderBy returns the ORDER BY expression for the sort mode.
func (s Sort) orderBy() string {
	switch s {
	case MostUsed:
		return "ue.count DESC"
	case LeastUsed:
		return "ue.count ASC"
	case LastAdded:
		return "ue.created_at DESC"
	case FirstAdded:
		return "ue.created_at ASC"
	case LastUsed:
		return "ue.last_used DESC"
	case FirstUsed:
		return "ue.last_used ASC"
	case Random:
		return "RANDOM()"
	}
	return "ue.count DESC"
}

// Query describes one search over a user's tagged entities.
type Query struct {
	// PositiveTags an entity must match all of, each by prefix against any
	// of its tag names.
	PositiveTags []string
	// NegativeTags exclude an entity only when every one of them matches.
	NegativeTags []string
	// MediaType restricts results to one variant when non-nil.
	MediaType *MediaType
	// Sort picks the result ordering.
	Sort Sort
	// ListAll skips tag matching entirely: scope by user, filter by media
	// type, sort and paginate.
	ListAll bool
}

// ResultPage is one page of search results. NextPage carries the token
// for the following page; it is nil for Random ordering, which is not
// stable across calls so cursoring through it would be meaningless.
type ResultPage struct {
	Entities []Entity
	NextPage *int
}

const searchSelectJoin = `
	SELECT e.entity_id, e.file_ref, e.media_type
	FROM associations a
	JOIN tags t ON t.tag_id = a.tag_id
	JOIN user_entities ue ON ue.combo_id = a.combo_id
	JOIN entities e ON e.entity_id = ue.entity_id
	WHERE ue.user_id = ?`

// FindEntities runs the multi-tag search for one user and returns the
// requested 0-based page.
//
// A positive tag matches an entity when any of the entity's tag names has
// it as a case-insensitive prefix. An entity is returned only when every
// distinct positive tag is matched: the HAVING clause requires one
// satisfied per-filter predicate per positive tag, so a single
// association can never satisfy two different requested tags by merely
// being counted twice. Negative tags exclude an entity only when the
// entity would match all of them; a partial negative match keeps the
// entity in the results.
func (s *Store) FindEntities(ctx context.Context, userID string, query Query, page int) (*ResultPage, error) {
	if query.ListAll {
		return s.ListEntities(ctx, userID, query.Sort, query.MediaType, page)
	}

	if len(query.PositiveTags) == 0 {
		// Deliberate no-match policy, not an error.
		s.logger.Warnw("FindEntities called with no positive tags", "user_id", userID)
		return &ResultPage{NextPage: nextPage(query.Sort, page)}, nil
	}

	s.logger.Debugw("FindEntities",
		"user_id", userID,
		"tags", query.PositiveTags,
		"negative_tags", query.NegativeTags,
		"sort", query.Sort.String(),
		"page", page,
	)

	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(searchSelectJoin)

	if query.MediaType != nil {
		sb.WriteString(" AND e.media_type = ?")
		args = append(args, *query.MediaType)
	}

	if len(query.NegativeTags) > 0 {
		sb.WriteString(`
	AND ue.entity_id NOT IN (
		SELECT ue2.entity_id
		FROM associations a2
		JOIN tags t2 ON t2.tag_id = a2.tag_id
		JOIN user_entities ue2 ON ue2.combo_id = a2.combo_id
		WHERE ue2.user_id = ? AND `)
		args = append(args, userID)
		writeAnyMatch(&sb, &args, "t2.tag_name", query.NegativeTags)
		sb.WriteString(" GROUP BY a2.combo_id HAVING ")
		writeAllMatched(&sb, &args, "t2.tag_name", query.NegativeTags)
		sb.WriteString(")")
	}

	sb.WriteString(" AND ")
	writeAnyMatch(&sb, &args, "t.tag_name", query.PositiveTags)

	sb.WriteString(" GROUP BY a.combo_id HAVING ")
	writeAllMatched(&sb, &args, "t.tag_name", query.PositiveTags)

	sb.WriteString(" ORDER BY ")
	sb.WriteString(query.Sort.orderBy())
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, PageSize, page*PageSize)

	entities, err := s.queryEntities(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return &ResultPage{Entities: entities, NextPage: nextPage(query.Sort, page)}, nil
}

// ListEntities returns one page of every entity the user has tagged,
// optionally filtered by media type.
func (s *Store) ListEntities(ctx context.Context, userID string, sort Sort, mediaType *MediaType, page int) (*ResultPage, error) {
	s.logger.Debugw("ListEntities", "user_id", userID, "sort", sort.String(), "page", page)

	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(searchSelectJoin)

	if mediaType != nil {
		sb.WriteString(" AND e.media_type = ?")
		args = append(args, *mediaType)
	}

	sb.WriteString(" GROUP BY a.combo_id ORDER BY ")
	sb.WriteString(sort.orderBy())
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, PageSize, page*PageSize)

	entities, err := s.queryEntities(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return &ResultPage{Entities: entities, NextPage: nextPage(sort, page)}, nil
}

func (s *Store) queryEntities(ctx context.Context, query string, args ...any) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query entities")
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.EntityID, &e.FileRef, &e.MediaType); err != nil {
			return nil, errors.Wrap(err, "failed to scan entity")
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// nextPage issues the token for the following page. Random ordering gets
// none: it is not stable across calls.
func nextPage(sort Sort, page int) *int {
	if sort == Random {
		return nil
	}
	next := page + 1
	return &next
}

// writeAnyMatch appends "(col LIKE ? ESCAPE '\' OR …)", one branch per
// filter tag. It narrows the grouped rows to those matching at least one
// filter before the per-filter HAVING runs.
func writeAnyMatch(sb *strings.Builder, args *[]any, column string, tags []string) {
	sb.WriteString("(")
	for i, tag := range tags {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString(column)
		sb.WriteString(` LIKE ? ESCAPE '\'`)
		*args = append(*args, likePrefixPattern(tag))
	}
	sb.WriteString(")")
}

// writeAllMatched appends the distinct-count threshold: one
// "SUM(col LIKE ?) > 0" predicate per filter tag, joined with AND, so the
// group passes only when every distinct filter found at least one
// matching association.
func writeAllMatched(sb *strings.Builder, args *[]any, column string, tags []string) {
	for i, tag := range tags {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("SUM(")
		sb.WriteString(column)
		sb.WriteString(` LIKE ? ESCAPE '\'`)
		sb.WriteString(") > 0")
		*args = append(*args, likePrefixPattern(tag))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefixPattern escapes LIKE wildcards in user-supplied tag text so it
// matches literally, then appends the implicit trailing prefix wildcard.
// SQLite LIKE is case-insensitive for ASCII, which gives the
// case-insensitive prefix rule.
func likePrefixPattern(tag string) string {
	return likeEscaper.Replace(tag) + "%"
}
