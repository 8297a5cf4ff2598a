package tokens_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := tokens.NewMemoryStore()

	_, ok := store.Get(ctx, tokens.Access)
	require.False(t, ok, "empty store reports absence")

	store.Set(ctx, tokens.Access, "access-1")
	store.Set(ctx, tokens.Refresh, "refresh-1")

	v, ok := store.Get(ctx, tokens.Access)
	require.True(t, ok)
	require.Equal(t, "access-1", v)

	store.Set(ctx, tokens.Access, "")
	_, ok = store.Get(ctx, tokens.Access)
	require.False(t, ok, "empty value deletes")

	store.Clear(ctx)
	require.Equal(t, tokens.Credentials{}, tokens.Load(ctx, store))
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := tokens.NewMemoryStore()

	tokens.Save(ctx, store, tokens.Credentials{AccessToken: "a", RefreshToken: "r"})
	require.Equal(t, tokens.Credentials{AccessToken: "a", RefreshToken: "r"}, tokens.Load(ctx, store))
}

func TestMemoryFactory(t *testing.T) {
	ctx := context.Background()
	factory := tokens.NewMemoryFactory()

	first := factory.Open("sid-1")
	first.Set(ctx, tokens.Access, "a")

	require.Same(t, first, factory.Open("sid-1"))

	_, ok := factory.Open("sid-2").Get(ctx, tokens.Access)
	require.False(t, ok, "sessions are isolated")

	factory.Forget("sid-1")
	_, ok = factory.Open("sid-1").Get(ctx, tokens.Access)
	require.False(t, ok)
}

func TestKind_Key(t *testing.T) {
	require.Equal(t, "token", tokens.Access.Key())
	require.Equal(t, "refreshToken", tokens.Refresh.Key())
}
