package indexer

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

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Ping(ctx))
	require.NoError(t, cache.Set(ctx, "k", []byte(`{"data":{}}`), time.Minute))

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"data":{}}`), got)

	mr.FastForward(2 * time.Minute)
	_, err = cache.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), "absent")
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRawCacheSkipsRepeatedQueries(t *testing.T) {
	cache, _ := newTestCache(t)
	stub := &indexerStub{t: t, responses: map[string]string{
		"poolSnapshots":    poolSnapshotsResponse,
		"trancheSnapshots": trancheSnapshotsResponse,
	}}
	client := newTestClient(t, stub, WithRawCache(cache, time.Minute))
	ctx := context.Background()

	first, err := client.PoolSnapshots(ctx, testFilter())
	require.NoError(t, err)
	second, err := client.PoolSnapshots(ctx, testFilter())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stub.hits.Load())
	assert.Equal(t, first, second)

	// A different operation misses and goes upstream.
	_, err = client.TrancheSnapshots(ctx, testFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stub.hits.Load())
}

func TestRawCacheKeyedByVariables(t *testing.T) {
	cache, _ := newTestCache(t)
	stub := &indexerStub{t: t, responses: map[string]string{"poolSnapshots": poolSnapshotsResponse}}
	client := newTestClient(t, stub, WithRawCache(cache, time.Minute))
	ctx := context.Background()

	_, err := client.PoolSnapshots(ctx, testFilter())
	require.NoError(t, err)

	widened := testFilter()
	later := time.Date(2024, 11, 10, 23, 59, 59, 0, time.UTC)
	widened.Timestamp.LessThanOrEqualTo = &later
	_, err = client.PoolSnapshots(ctx, widened)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stub.hits.Load())
}

func TestRawCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	stub := &indexerStub{t: t, responses: map[string]string{"poolSnapshots": poolSnapshotsResponse}}
	client := newTestClient(t, stub, WithRawCache(cache, 30*time.Second))
	ctx := context.Background()

	_, err := client.PoolSnapshots(ctx, testFilter())
	require.NoError(t, err)

	mr.FastForward(time.Minute)
	_, err = client.PoolSnapshots(ctx, testFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stub.hits.Load())
}

func TestRawCacheErrorsAreNotCached(t *testing.T) {
	cache, _ := newTestCache(t)
	stub := &indexerStub{t: t, responses: map[string]string{
		"poolSnapshots": `{"data":null,"errors":[{"message":"boom"}]}`,
	}}
	client := newTestClient(t, stub, WithRawCache(cache, time.Minute))
	ctx := context.Background()

	_, err := client.PoolSnapshots(ctx, testFilter())
	require.Error(t, err)
	_, err = client.PoolSnapshots(ctx, testFilter())
	require.Error(t, err)
	assert.Equal(t, int64(2), stub.hits.Load())
}
