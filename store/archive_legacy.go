package store

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"github.com/tagdex/tagdex/errors"
)

// legacyRecord is one entry in the third-party exporter's format: plain
// (uncompressed) JSON, no usage counters, and no explicit media type —
// the type has to be recovered from the opaque file reference.
type legacyRecord struct {
	ID      string   `json:"id"`
	FileID  string   `json:"fileId"`
	Tags    []string `json:"tags"`
	Set     string   `json:"set"`
	Animate bool     `json:"isAnimated"`
}

// ImportLegacy imports an archive written by the third-party exporter. A
// pre-pass maps its fields into the normalized record shape — deriving
// each record's media type from its encoded file reference — and the
// result enters the same transactional import path as Import. Counters
// start at zero; the source format carries none.
func (s *Store) ImportLegacy(ctx context.Context, userID string, payload []byte) error {
	var legacy []legacyRecord
	if err := json.Unmarshal(payload, &legacy); err != nil {
		return errors.Wrap(errors.ErrMalformedArchive, err.Error())
	}

	records := make([]ArchiveRecord, 0, len(legacy))
	for _, item := range legacy {
		mediaType, err := MediaTypeFromFileRef(item.FileID)
		if err != nil {
			return errors.Wrapf(err, "entity %s", item.ID)
		}
		records = append(records, ArchiveRecord{
			EntityID:  item.ID,
			FileRef:   item.FileID,
			MediaType: mediaType,
			Tags:      item.Tags,
		})
	}

	return s.importRecords(ctx, userID, records)
}

// File-reference type codes, per the media platform's identifier layout:
// the reference is base64url without padding, and its first four bytes are
// a little-endian type code with two flag bits ORed into the high byte.
const (
	refTypePhoto     = 2
	refTypeVideo     = 4
	refTypeSticker   = 8
	refTypeAnimation = 10

	refFlagWebLocation   = 1 << 24
	refFlagFileReference = 1 << 25
)

// MediaTypeFromFileRef derives the media type from an opaque encoded file
// reference.
func MediaTypeFromFileRef(fileRef string) (MediaType, error) {
	raw, err := base64.RawURLEncoding.DecodeString(fileRef)
	if err != nil {
		return "", errors.Wrapf(errors.ErrMalformedArchive, "undecodable file reference: %v", err)
	}
	if len(raw) < 4 {
		return "", errors.Wrap(errors.ErrMalformedArchive, "file reference too short")
	}

	code := binary.LittleEndian.Uint32(raw[:4]) &^ uint32(refFlagWebLocation|refFlagFileReference)

	switch code {
	case refTypePhoto:
		return MediaPhoto, nil
	case refTypeVideo:
		return MediaVideo, nil
	case refTypeSticker:
		return MediaSticker, nil
	case refTypeAnimation:
		return MediaAnimation, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownMediaType, "file reference type code %d", code)
}
