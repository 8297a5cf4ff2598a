package refresh_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/refresh"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/stretchr/testify/require"
)

func TestTokenSource_UsesStoredToken(t *testing.T) {
	backend := newFakeBackend(t, respondToken("new-access"))
	store := seededStore("refresh-1")
	r := refresh.New(store, backend.Client(), backend.URL)

	tok, err := refresh.TokenSource(context.Background(), store, r).Token()
	require.NoError(t, err)
	require.Equal(t, "expired-access", tok.AccessToken)
	require.Zero(t, backend.hits.Load())

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	tok.SetAuthHeader(req)
	require.Equal(t, "Bearer expired-access", req.Header.Get("Authorization"))
}

func TestTokenSource_RefreshesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend(t, respondToken("new-access"))
	store := tokens.NewMemoryStore()
	store.Set(ctx, tokens.Refresh, "refresh-1")
	r := refresh.New(store, backend.Client(), backend.URL)

	tok, err := refresh.TokenSource(ctx, store, r).Token()
	require.NoError(t, err)
	require.Equal(t, "new-access", tok.AccessToken)
	require.EqualValues(t, 1, backend.hits.Load())
}

func TestTokenSource_NothingStored(t *testing.T) {
	backend := newFakeBackend(t, respondToken("new-access"))
	store := tokens.NewMemoryStore()
	r := refresh.New(store, backend.Client(), backend.URL)

	_, err := refresh.TokenSource(context.Background(), store, r).Token()
	require.ErrorIs(t, err, errors.ErrNoRefreshToken)
}
