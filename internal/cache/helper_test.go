package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestGetJSONMiss(t *testing.T) {
	setupMiniredis(t)

	var dest cachedPost
	found, err := GetJSON(context.Background(), PostKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetThenGetJSON(t *testing.T) {
	setupMiniredis(t)

	ctx := context.Background()
	want := cachedPost{ID: 7, Title: "October notes"}
	require.NoError(t, SetJSON(ctx, PostKey(7), want, PostTTL))

	var got cachedPost
	found, err := GetJSON(ctx, PostKey(7), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestAsideFetchesOnceThenServesFromCache(t *testing.T) {
	setupMiniredis(t)

	ctx := context.Background()
	calls := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 3, Title: "From the database"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(3), &first, PostTTL, fetch(&first)))
	assert.Equal(t, 1, calls)

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(3), &second, PostTTL, fetch(&second)))
	assert.Equal(t, 1, calls, "second read should hit the cache")
	assert.Equal(t, first, second)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupMiniredis(t)

	var dest cachedPost
	wantErr := errors.New("db down")
	err := Aside(context.Background(), PostKey(9), &dest, PostTTL, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestAsideCorruptEntryFallsThroughToFetch(t *testing.T) {
	mr := setupMiniredis(t)

	require.NoError(t, mr.Set(FeedFirstPageKey(), "{not json"))

	fetched := false
	var dest cachedPost
	err := Aside(context.Background(), FeedFirstPageKey(), &dest, FeedTTL, func() error {
		fetched = true
		dest = cachedPost{ID: 2, Title: "From the database"}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, fetched, "corrupt cache entry should behave like a miss")
	assert.Equal(t, uint(2), dest.ID)
}

func TestAsideRedisDownFallsThroughToFetch(t *testing.T) {
	mr := setupMiniredis(t)
	mr.Close()

	fetched := false
	var dest cachedPost
	err := Aside(context.Background(), PostKey(11), &dest, PostTTL, func() error {
		fetched = true
		dest = cachedPost{ID: 11, Title: "Still served"}
		return nil
	})
	require.NoError(t, err, "an unreachable cache must not fail the read")
	assert.True(t, fetched)
	assert.Equal(t, uint(11), dest.ID)
}

func TestInvalidatePostDropsFeedKeys(t *testing.T) {
	mr := setupMiniredis(t)

	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, PostKey(4), cachedPost{ID: 4}, PostTTL))
	require.NoError(t, SetJSON(ctx, FeedFirstPageKey(), []cachedPost{{ID: 4}}, FeedTTL))
	require.NoError(t, SetJSON(ctx, CategoryFeedKey("travel"), []cachedPost{{ID: 4}}, FeedTTL))

	InvalidatePost(ctx, 4, "travel")

	assert.False(t, mr.Exists(PostKey(4)))
	assert.False(t, mr.Exists(FeedFirstPageKey()))
	assert.False(t, mr.Exists(CategoryFeedKey("travel")))
}

func TestGetJSONNilClient(t *testing.T) {
	SetClient(nil)

	var dest cachedPost
	found, err := GetJSON(context.Background(), PostKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(context.Background(), PostKey(1), dest, time.Minute))
}
