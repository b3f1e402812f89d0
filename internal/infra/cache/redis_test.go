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

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	require.NoError(t, SetJSON(ctx, rdb, "k", sample{Name: "a", Count: 3}, time.Minute))

	var got sample
	found, err := GetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sample{Name: "a", Count: 3}, got)

	mr.FastForward(2 * time.Minute)
	found, err = GetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var got sample
	found, err := GetJSON(ctx, rdb, "k", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
