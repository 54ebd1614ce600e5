package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagdex/tagdex/errors"
	"github.com/tagdex/tagdex/store"
)

func TestUpsertEntityOverwritesFileRef(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEntity(ctx, store.Entity{
		EntityID: "e1", FileRef: "ref-a", MediaType: store.MediaPhoto,
	}))
	require.NoError(t, s.UpsertEntity(ctx, store.Entity{
		EntityID: "e1", FileRef: "ref-b", MediaType: store.MediaPhoto,
	}))

	var ref string
	var mediaType string
	require.NoError(t, conn.QueryRow(
		"SELECT file_ref, media_type FROM entities WHERE entity_id = 'e1'",
	).Scan(&ref, &mediaType))
	assert.Equal(t, "ref-b", ref)
	assert.Equal(t, "photo", mediaType)
}

func TestUpsertEntityRejectsMediaTypeChange(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertEntity(ctx, store.Entity{
		EntityID: "e1", FileRef: "ref-a", MediaType: store.MediaPhoto,
	}))

	err := s.UpsertEntity(ctx, store.Entity{
		EntityID: "e1", FileRef: "ref-b", MediaType: store.MediaVideo,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMediaTypeMismatch))

	// No partial write: the file reference is untouched
	var ref string
	require.NoError(t, conn.QueryRow("SELECT file_ref FROM entities WHERE entity_id = 'e1'").Scan(&ref))
	assert.Equal(t, "ref-a", ref)
}

func TestUpsertEntityRejectsUnknownMediaType(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.UpsertEntity(context.Background(), store.Entity{
		EntityID: "e1", FileRef: "ref-a", MediaType: "hologram",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownMediaType))
}

func TestAddRejectsMediaTypeChange(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	mustAdd(t, s, "u1", store.Entity{EntityID: "e1", FileRef: "r", MediaType: store.MediaSticker}, "cat")

	err := s.Add(ctx, "u1", store.Entity{EntityID: "e1", FileRef: "r2", MediaType: store.MediaVideo}, []string{"dog"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMediaTypeMismatch))

	// The whole call rolled back: no dog association appeared
	tags, err := s.GetTags(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, tags)
}
