package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobsearch/internal/domain"
	"github.com/honeycarbs/jobsearch/internal/storage/memory"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type tieredFixture struct {
	cache *TieredCache
	cold  *memory.SearchCache
	mr    *miniredis.Miniredis
	clock *clock
}

func newTiered(t *testing.T) tieredFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := &clock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
	cold := memory.NewSearchCache(clk.Now)

	c, err := NewTieredCache(rdb, cold, 2*time.Hour, clk.Now, nil)
	require.NoError(t, err)
	return tieredFixture{cache: c, cold: cold, mr: mr, clock: clk}
}

var key = domain.SearchKey{Query: "golang", Location: domain.DefaultLocation, Page: 1}

func TestTieredStoreWritesBothTiers(t *testing.T) {
	f := newTiered(t)
	ctx := context.Background()

	require.NoError(t, f.cache.Store(ctx, key, []byte("payload")))

	assert.Equal(t, 1, f.cold.Len())
	assert.True(t, f.mr.Exists(redisKey(key)))
	assert.Equal(t, 2*time.Hour, f.mr.TTL(redisKey(key)))

	got, ok, err := f.cache.Lookup(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))
}

func TestTieredHotEntryRespectsTTL(t *testing.T) {
	f := newTiered(t)
	ctx := context.Background()

	require.NoError(t, f.cache.Store(ctx, key, []byte("payload")))
	f.clock.now = f.clock.now.Add(90 * time.Minute)

	_, ok, err := f.cache.Lookup(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "older than ttl in both tiers")

	_, ok, err = f.cache.Lookup(ctx, key, 2*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "a wider window accepts the same entry")
}

func TestTieredPromotesColdHits(t *testing.T) {
	f := newTiered(t)
	ctx := context.Background()

	require.NoError(t, f.cold.Store(ctx, key, []byte("cold")))
	assert.False(t, f.mr.Exists(redisKey(key)))

	got, ok, err := f.cache.Lookup(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cold", string(got))
	assert.True(t, f.mr.Exists(redisKey(key)), "cold hit is promoted")
}

func TestTieredHotExpiry(t *testing.T) {
	f := newTiered(t)
	ctx := context.Background()

	require.NoError(t, f.cache.Store(ctx, key, []byte("payload")))
	f.mr.FastForward(2*time.Hour + time.Second)

	assert.False(t, f.mr.Exists(redisKey(key)))

	got, ok, err := f.cache.Lookup(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, ok, "cold tier still holds the record")
	assert.Equal(t, "payload", string(got))
}

func TestTieredSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = down.Close() })

	cold := memory.NewSearchCache(nil)
	c, err := NewTieredCache(down, cold, time.Hour, nil, nil)
	require.NoError(t, err)

	require.NoError(t, c.Store(ctx, key, []byte("payload")))
	assert.Equal(t, 1, cold.Len())

	got, ok, err := c.Lookup(ctx, key, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))
}

func TestTieredIgnoresCorruptEntries(t *testing.T) {
	f := newTiered(t)
	ctx := context.Background()

	require.NoError(t, f.mr.Set(redisKey(key), "not json"))

	_, ok, err := f.cache.Lookup(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}
