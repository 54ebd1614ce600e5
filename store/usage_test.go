package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagdex/tagdex/store"
)

func TestIncreaseCountsSelections(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clock := int64(0)
	s.WithClock(func() int64 { clock += 100; return clock })

	const n = 5
	for i := 0; i < n; i++ {
		require.NoError(t, s.Increase(ctx, "u1", "e1"))
	}

	stat, err := s.Get(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(n), stat.Count)
	assert.Equal(t, clock, stat.LastUsed, "last_used is the time of the nth call")
	assert.Equal(t, int64(100), stat.CreatedAt, "created_at is the time of the first call")
}

func TestGetAbsentIsZeroValued(t *testing.T) {
	s, _ := newTestStore(t)

	stat, err := s.Get(context.Background(), "u1", "never-seen")
	require.NoError(t, err)
	assert.Equal(t, store.UsageStat{UserID: "u1", EntityID: "never-seen"}, stat)
}

func TestIncreaseAfterTaggingKeepsCreatedAt(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clock := int64(0)
	s.WithClock(func() int64 { clock += 100; return clock })

	// Tagging creates the (user, entity) row first
	mustAdd(t, s, "u1", sticker("e1"), "cat")
	require.NoError(t, s.Increase(ctx, "u1", "e1"))

	stat, err := s.Get(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.Count)
	assert.Equal(t, int64(100), stat.CreatedAt, "created_at from the tagging event survives")
	assert.Equal(t, int64(200), stat.LastUsed)
}

func TestIncreaseIsScopedPerUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Increase(ctx, "u1", "e1"))
	require.NoError(t, s.Increase(ctx, "u2", "e1"))
	require.NoError(t, s.Increase(ctx, "u2", "e1"))

	stat, err := s.Get(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stat.Count)

	stat, err = s.Get(ctx, "u2", "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stat.Count)
}
