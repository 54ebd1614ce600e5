package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagdex/tagdex/store"
)

func entityIDs(entities []store.Entity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.EntityID)
	}
	return ids
}

func find(t *testing.T, s *store.Store, userID string, q store.Query, page int) *store.ResultPage {
	t.Helper()
	result, err := s.FindEntities(context.Background(), userID, q, page)
	require.NoError(t, err)
	return result
}

// The concrete scenario from the core contract: E1 tagged {cat, dog},
// E2 tagged {cat}.
func setupCatDog(t *testing.T) *store.Store {
	t.Helper()
	s, _ := newTestStore(t)
	mustAdd(t, s, "u1", sticker("E1"), "cat", "dog")
	mustAdd(t, s, "u1", sticker("E2"), "cat")
	return s
}

func TestFindEntitiesAllPositiveTagsRequired(t *testing.T) {
	s := setupCatDog(t)

	result := find(t, s, "u1", store.Query{PositiveTags: []string{"cat", "dog"}}, 0)
	assert.Equal(t, []string{"E1"}, entityIDs(result.Entities))
}

func TestFindEntitiesPrefixMatch(t *testing.T) {
	s := setupCatDog(t)

	result := find(t, s, "u1", store.Query{PositiveTags: []string{"ca"}}, 0)
	assert.ElementsMatch(t, []string{"E1", "E2"}, entityIDs(result.Entities))
}

func TestFindEntitiesCaseInsensitive(t *testing.T) {
	s := setupCatDog(t)

	result := find(t, s, "u1", store.Query{PositiveTags: []string{"CAT"}}, 0)
	assert.ElementsMatch(t, []string{"E1", "E2"}, entityIDs(result.Entities))
}

func TestFindEntitiesNegativeTagExcludes(t *testing.T) {
	s := setupCatDog(t)

	result := find(t, s, "u1", store.Query{
		PositiveTags: []string{"cat"},
		NegativeTags: []string{"dog"},
	}, 0)
	assert.Equal(t, []string{"E2"}, entityIDs(result.Entities))
}

func TestFindEntitiesPartialNegativeDoesNotExclude(t *testing.T) {
	s, _ := newTestStore(t)
	// E1 carries "dog" but not "bird": only one of the two negative
	// filters matches, so E1 stays in the results.
	mustAdd(t, s, "u1", sticker("E1"), "cat", "dog")

	result := find(t, s, "u1", store.Query{
		PositiveTags: []string{"cat"},
		NegativeTags: []string{"dog", "bird"},
	}, 0)
	assert.Equal(t, []string{"E1"}, entityIDs(result.Entities))

	// Both negatives matching does exclude
	mustAdd(t, s, "u1", sticker("E1"), "bird")
	result = find(t, s, "u1", store.Query{
		PositiveTags: []string{"cat"},
		NegativeTags: []string{"dog", "bird"},
	}, 0)
	assert.Empty(t, result.Entities)
}

func TestFindEntitiesDistinctTagThreshold(t *testing.T) {
	s, _ := newTestStore(t)
	// Two associations both match the "ca" filter, none match "dog". A
	// naive matched-row count would reach the threshold of 2 and wrongly
	// return the entity; requiring every distinct filter to be satisfied
	// must not.
	mustAdd(t, s, "u1", sticker("E1"), "cat", "car")

	result := find(t, s, "u1", store.Query{PositiveTags: []string{"ca", "dog"}}, 0)
	assert.Empty(t, result.Entities)

	// Sanity: one matching association can satisfy two different filters
	result = find(t, s, "u1", store.Query{PositiveTags: []string{"ca", "cat"}}, 0)
	assert.Equal(t, []string{"E1"}, entityIDs(result.Entities))
}

func TestFindEntitiesEscapesWildcards(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "u1", sticker("E1"), "100%cotton")
	mustAdd(t, s, "u1", sticker("E2"), "100xcotton")

	// The % must match literally, not as a wildcard
	result := find(t, s, "u1", store.Query{PositiveTags: []string{"100%"}}, 0)
	assert.Equal(t, []string{"E1"}, entityIDs(result.Entities))

	mustAdd(t, s, "u1", sticker("E3"), "a_b")
	mustAdd(t, s, "u1", sticker("E4"), "axb")
	result = find(t, s, "u1", store.Query{PositiveTags: []string{"a_"}}, 0)
	assert.Equal(t, []string{"E3"}, entityIDs(result.Entities))
}

func TestFindEntitiesScopedByUser(t *testing.T) {
	s := setupCatDog(t)
	mustAdd(t, s, "u2", sticker("E9"), "cat")

	result := find(t, s, "u2", store.Query{PositiveTags: []string{"cat"}}, 0)
	assert.Equal(t, []string{"E9"}, entityIDs(result.Entities))
}

func TestFindEntitiesMediaTypeFilter(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "u1", store.Entity{EntityID: "E1", FileRef: "r1", MediaType: store.MediaSticker}, "cat")
	mustAdd(t, s, "u1", store.Entity{EntityID: "E2", FileRef: "r2", MediaType: store.MediaPhoto}, "cat")

	photo := store.MediaPhoto
	result := find(t, s, "u1", store.Query{PositiveTags: []string{"cat"}, MediaType: &photo}, 0)
	assert.Equal(t, []string{"E2"}, entityIDs(result.Entities))
}

func TestFindEntitiesEmptyPositiveTagsNoMatch(t *testing.T) {
	s := setupCatDog(t)

	// Deliberate no-match policy, not an error
	result := find(t, s, "u1", store.Query{}, 0)
	assert.Empty(t, result.Entities)
}

func TestFindEntitiesPageBeyondResults(t *testing.T) {
	s := setupCatDog(t)

	result := find(t, s, "u1", store.Query{PositiveTags: []string{"cat"}}, 7)
	assert.Empty(t, result.Entities)
	require.NotNil(t, result.NextPage)
	assert.Equal(t, 8, *result.NextPage)
}

func TestFindEntitiesRandomHasNoNextPage(t *testing.T) {
	s := setupCatDog(t)

	result := find(t, s, "u1", store.Query{PositiveTags: []string{"cat"}, Sort: store.Random}, 0)
	assert.Nil(t, result.NextPage)
	assert.Len(t, result.Entities, 2)
}

func TestListEntities(t *testing.T) {
	s := setupCatDog(t)

	result, err := s.ListEntities(context.Background(), "u1", store.LastAdded, nil, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"E1", "E2"}, entityIDs(result.Entities))
	require.NotNil(t, result.NextPage)
	assert.Equal(t, 1, *result.NextPage)
}

func TestListAllQueryDelegates(t *testing.T) {
	s := setupCatDog(t)

	// ListAll skips tag matching entirely, even with filters supplied
	result := find(t, s, "u1", store.Query{ListAll: true, PositiveTags: []string{"zzz"}}, 0)
	assert.ElementsMatch(t, []string{"E1", "E2"}, entityIDs(result.Entities))
}

func TestSortOrderings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clock := int64(1000)
	s.WithClock(func() int64 { clock += 1000; return clock })

	mustAdd(t, s, "u1", sticker("E1"), "cat") // created first
	mustAdd(t, s, "u1", sticker("E2"), "cat")
	mustAdd(t, s, "u1", sticker("E3"), "cat") // created last

	// E2 used twice, E3 once, E1 never
	require.NoError(t, s.Increase(ctx, "u1", "E3"))
	require.NoError(t, s.Increase(ctx, "u1", "E2"))
	require.NoError(t, s.Increase(ctx, "u1", "E2"))

	cases := []struct {
		sort store.Sort
		want []string
	}{
		{store.MostUsed, []string{"E2", "E3", "E1"}},
		{store.LeastUsed, []string{"E1", "E3", "E2"}},
		{store.LastAdded, []string{"E3", "E2", "E1"}},
		{store.FirstAdded, []string{"E1", "E2", "E3"}},
		{store.LastUsed, []string{"E2", "E3", "E1"}},
		{store.FirstUsed, []string{"E1", "E3", "E2"}},
	}
	for _, tc := range cases {
		t.Run(tc.sort.String(), func(t *testing.T) {
			result := find(t, s, "u1", store.Query{PositiveTags: []string{"cat"}, Sort: tc.sort}, 0)
			assert.Equal(t, tc.want, entityIDs(result.Entities))
		})
	}
}

func TestPagination(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	clock := int64(0)
	s.WithClock(func() int64 { clock++; return clock })

	for i := 0; i < store.PageSize+10; i++ {
		mustAdd(t, s, "u1", sticker(string(rune('a'+i/26))+string(rune('a'+i%26))), "cat")
	}

	first := find(t, s, "u1", store.Query{PositiveTags: []string{"cat"}, Sort: store.FirstAdded}, 0)
	require.Len(t, first.Entities, store.PageSize)

	second := find(t, s, "u1", store.Query{PositiveTags: []string{"cat"}, Sort: store.FirstAdded}, *first.NextPage)
	require.Len(t, second.Entities, 10)

	// No overlap between pages
	seen := make(map[string]bool)
	for _, e := range first.Entities {
		seen[e.EntityID] = true
	}
	for _, e := range second.Entities {
		assert.False(t, seen[e.EntityID], "entity %s appeared on both pages", e.EntityID)
	}

	third, err := s.FindEntities(ctx, "u1", store.Query{PositiveTags: []string{"cat"}, Sort: store.FirstAdded}, *second.NextPage)
	require.NoError(t, err)
	assert.Empty(t, third.Entities)
}

func TestParseSort(t *testing.T) {
	sort, err := store.ParseSort("last_added")
	require.NoError(t, err)
	assert.Equal(t, store.LastAdded, sort)

	_, err = store.ParseSort("sideways")
	require.Error(t, err)
}
