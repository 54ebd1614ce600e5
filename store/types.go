package store

import (
	"strings"

	"github.com/tagdex/tagdex/errors"
)

// MediaType is the closed set of media kinds an entity can be. The value
// is stored as-is in the entities table and in archive records.
type MediaType string

const (
	MediaSticker   MediaType = "sticker"
	MediaAnimation MediaType = "animation"
	MediaPhoto     MediaType = "photo"
	MediaVideo     MediaType = "video"
)

// MediaTypes lists every variant, in the order global stats report them.
var MediaTypes = []MediaType{MediaSticker, MediaAnimation, MediaPhoto, MediaVideo}

// ParseMediaType maps a string onto the closed variant set.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(s)) {
	case MediaSticker:
		return MediaSticker, nil
	case MediaAnimation:
		return MediaAnimation, nil
	case MediaPhoto:
		return MediaPhoto, nil
	case MediaVideo:
		return MediaVideo, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownMediaType, "%q", s)
}

// Valid reports whether t is one of the fixed variants.
func (t MediaType) Valid() bool {
	_, err := ParseMediaType(string(t))
	return err == nil
}

// Entity is one media item: a platform-stable id, the current (volatile)
// file reference, and its immutable media type.
type Entity struct {
	EntityID  string
	FileRef   string
	MediaType MediaType
}

// UsageStat is the per (user, entity) usage record. A zero-valued stat
// (count 0, timestamps 0) stands in for an absent row; absence is not an
// error condition.
type UsageStat struct {
	UserID    string
	EntityID  string
	Count     int64
	LastUsed  int64
	CreatedAt int64
}

// GlobalStats are the read-only global counters.
type GlobalStats struct {
	TotalUsers int64
	TotalTags  int64

	TotalStickers   int64
	TotalAnimations int64
	TotalPhotos     int64
	TotalVideos     int64

	TotalSelections int64
}

// NormalizeTag canonicalizes a tag name: case-folded, commas stripped,
// whitespace removed. Interactive callers are expected to pre-normalize;
// the bulk import path applies this to every incoming tag.
func NormalizeTag(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, ",", "")
	return strings.Join(strings.Fields(name), "")
}

// NormalizeTags normalizes and deduplicates a batch of tag names,
// dropping any that normalize to the empty string.
func NormalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		normalized := NormalizeTag(name)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}
