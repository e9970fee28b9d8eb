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

type aliasMap map[string]string

func setupRedisCache(t *testing.T, ttl time.Duration) (*RedisCache[aliasMap], *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache[aliasMap](client, ttl), mr
}

func TestMemoryCache_SetGetDel(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache[aliasMap](0)

	_, ok, err := c.Get(ctx, "aliases")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "aliases", aliasMap{"oat": "귀리"}))
	got, ok, err := c.Get(ctx, "aliases")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "귀리", got["oat"])

	require.NoError(t, c.Del(ctx, "aliases"))
	_, ok, err = c.Get(ctx, "aliases")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache[string](5 * time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v"))
	now = now.Add(4 * time.Minute)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t, time.Minute)

	_, ok, err := c.Get(ctx, "grainref:aliases")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "grainref:aliases", aliasMap{"brown rice": "현미"}))
	assert.True(t, mr.Exists("grainref:aliases"))
	assert.Equal(t, time.Minute, mr.TTL("grainref:aliases"))

	got, ok, err := c.Get(ctx, "grainref:aliases")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, aliasMap{"brown rice": "현미"}, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "grainref:aliases")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := setupRedisCache(t, 0)
	require.NoError(t, mr.Set("bad", "{not json"))
	_, _, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisCache_Del(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t, 0)
	require.NoError(t, c.Set(ctx, "k", aliasMap{}))
	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

type sessionKey struct{}

func TestStore_Namespacing(t *testing.T) {
	ctx := context.Background()
	core := NewMemoryCache[string](0)
	keyFn := func(ctx context.Context) (string, bool) {
		v, ok := ctx.Value(sessionKey{}).(string)
		return v, ok
	}
	s := NewStore[string](core, "session", keyFn)

	_, _, err := s.Get(ctx)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, s.Set(ctx, "x"), ErrKeyNotFound)

	ctx = context.WithValue(ctx, sessionKey{}, "abc")
	require.NoError(t, s.Set(ctx, "state"))
	raw, ok, err := core.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "state", raw)

	fixed := NewStore[string](core, "grainref", Fixed("aliases"))
	require.NoError(t, fixed.Set(ctx, "y"))
	_, ok, err = core.Get(ctx, "grainref:aliases")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, fixed.Del(ctx))
	_, ok, _ = fixed.Get(ctx)
	assert.False(t, ok)
}
