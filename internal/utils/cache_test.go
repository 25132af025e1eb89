package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var missing payload
	found, err := GetCache(ctx, rdb, "missing", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "key", payload{Name: "pandesal", Count: 3}, time.Minute))
	var got payload
	found, err = GetCache(ctx, rdb, "key", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "pandesal", Count: 3}, got)

	require.NoError(t, DeleteCache(ctx, rdb, "key"))
	found, err = GetCache(ctx, rdb, "key", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidatePrefix(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "products:page=1", []string{"a"}, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "products:page=2", []string{"b"}, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "categories:all", []string{"c"}, time.Minute))

	require.NoError(t, InvalidatePrefix(ctx, rdb, "products:"))

	var dest []string
	found, err := GetCache(ctx, rdb, "products:page=1", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = GetCache(ctx, rdb, "products:page=2", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	// Other prefixes are untouched
	found, err = GetCache(ctx, rdb, "categories:all", &dest)
	require.NoError(t, err)
	assert.True(t, found)
}
