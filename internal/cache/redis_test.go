package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss runs fetch and stores the result", func(t *testing.T) {
		mr := setupMiniredis(t)

		fetches := 0
		var got cachedThing
		err := Aside(ctx, "thing:1", &got, time.Minute, func() error {
			fetches++
			got = cachedThing{ID: 1, Name: "first"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)
		assert.True(t, mr.Exists("thing:1"))

		// Second read is served from cache.
		var again cachedThing
		err = Aside(ctx, "thing:1", &again, time.Minute, func() error {
			fetches++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)
		assert.Equal(t, got, again)
	})

	t.Run("corrupt entry is dropped and refetched", func(t *testing.T) {
		mr := setupMiniredis(t)
		require.NoError(t, mr.Set("thing:2", "{not json"))

		var got cachedThing
		err := Aside(ctx, "thing:2", &got, time.Minute, func() error {
			got = cachedThing{ID: 2, Name: "refetched"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "refetched", got.Name)
	})

	t.Run("fetch errors surface unchanged", func(t *testing.T) {
		setupMiniredis(t)

		wantErr := assert.AnError
		var got cachedThing
		err := Aside(ctx, "thing:3", &got, time.Minute, func() error { return wantErr })
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("degrades to fetch without a client", func(t *testing.T) {
		SetClient(nil)

		var got cachedThing
		err := Aside(ctx, "thing:4", &got, time.Minute, func() error {
			got = cachedThing{ID: 4, Name: "direct"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "direct", got.Name)
	})
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	mr := setupMiniredis(t)

	var got cachedThing
	require.NoError(t, Aside(ctx, PostKey(5), &got, time.Minute, func() error {
		got = cachedThing{ID: 5}
		return nil
	}))
	require.True(t, mr.Exists(PostKey(5)))

	InvalidatePost(ctx, 5)
	assert.False(t, mr.Exists(PostKey(5)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "post:7", PostKey(7))
	assert.Equal(t, "thread:7", ThreadKey(7))
	assert.Equal(t, "submolt:general", SubmoltKey("general"))
	assert.Equal(t, "agent:alpha", AgentKey("alpha"))
}
