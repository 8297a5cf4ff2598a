package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/jrsteele09/fewv-learns/tokens/filestore"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) *[32]byte {
	var key [32]byte
	for i := range key {
		key[i] = b
	}
	return &key
}

func TestStore_PlainRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sid.json")

	store := filestore.New(path, nil)
	store.Set(ctx, tokens.Access, "access-1")
	store.Set(ctx, tokens.Refresh, "refresh-1")

	reopened := filestore.New(path, nil)
	require.Equal(t, tokens.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}, tokens.Load(ctx, reopened))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"refreshToken":"refresh-1"`)

	reopened.Clear(ctx)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.Equal(t, tokens.Credentials{}, tokens.Load(ctx, store))
}

func TestStore_Sealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sid.json")

	store := filestore.New(path, testKey(7))
	store.Set(ctx, tokens.Access, "access-secret")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "access-secret")

	v, ok := filestore.New(path, testKey(7)).Get(ctx, tokens.Access)
	require.True(t, ok)
	require.Equal(t, "access-secret", v)

	_, ok = filestore.New(path, testKey(8)).Get(ctx, tokens.Access)
	require.False(t, ok, "a different key reads as absent")
}

func TestStore_EmptyValueDeletes(t *testing.T) {
	ctx := context.Background()
	store := filestore.New(filepath.Join(t.TempDir(), "sid.json"), nil)

	store.Set(ctx, tokens.Access, "a")
	store.Set(ctx, tokens.Access, "")
	_, ok := store.Get(ctx, tokens.Access)
	require.False(t, ok)
}

func TestFactory_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	factory := filestore.NewFactory(dir, nil)

	factory.Open("one").Set(ctx, tokens.Access, "a1")
	factory.Open("../escape").Set(ctx, tokens.Access, "a2")

	_, err := os.Stat(filepath.Join(dir, "one.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	require.NoError(t, err, "session ids cannot leave the folder")

	v, ok := factory.Open("one").Get(ctx, tokens.Access)
	require.True(t, ok)
	require.Equal(t, "a1", v)

	factory.Forget("one")
	v, ok = factory.Open("one").Get(ctx, tokens.Access)
	require.True(t, ok, "forgetting keeps the file")
	require.Equal(t, "a1", v)
}
