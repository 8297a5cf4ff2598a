package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/jrsteele09/fewv-learns/tokens/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	factory := redisstore.NewFactory(rdb, "fewv", 0)
	store := factory.Open("sid-1")

	store.Set(ctx, tokens.Access, "access-1")
	store.Set(ctx, tokens.Refresh, "refresh-1")

	got, err := mr.Get("fewv:sid-1:token")
	require.NoError(t, err)
	require.Equal(t, "access-1", got)

	require.Equal(t, tokens.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"},
		tokens.Load(ctx, factory.Open("sid-1")))

	_, ok := factory.Open("sid-2").Get(ctx, tokens.Access)
	require.False(t, ok)

	store.Clear(ctx)
	require.False(t, mr.Exists("fewv:sid-1:token"))
	require.False(t, mr.Exists("fewv:sid-1:refreshToken"))
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	store := redisstore.New(rdb, "fewv:sid", time.Minute)
	store.Set(ctx, tokens.Refresh, "refresh-1")
	require.Equal(t, time.Minute, mr.TTL("fewv:sid:refreshToken"))

	mr.FastForward(2 * time.Minute)
	_, ok := store.Get(ctx, tokens.Refresh)
	require.False(t, ok)
}

func TestStore_UnavailableReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	store := redisstore.New(rdb, "fewv:sid", 0)
	store.Set(ctx, tokens.Access, "a")
	mr.Close()

	_, ok := store.Get(ctx, tokens.Access)
	require.False(t, ok)
	store.Set(ctx, tokens.Access, "b")
	store.Clear(ctx)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := redisstore.Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = redisstore.Connect(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
}
