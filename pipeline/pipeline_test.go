package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/pipeline"
	"github.com/jrsteele09/fewv-learns/refresh"
	"github.com/jrsteele09/fewv-learns/session"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/stretchr/testify/require"
)

// fakeAPI accepts "fresh" as the only valid access token and rotates
// "refresh-1" into it.
type fakeAPI struct {
	*httptest.Server
	refreshHits  atomic.Int64
	resourceHits atomic.Int64

	refreshFails bool
	// refreshWaitFor holds the refresh response until this many resource
	// requests have arrived.
	refreshWaitFor int64
	// refreshHold, when set, holds the refresh response until closed.
	refreshHold  chan struct{}
	rejectStatus int
	alwaysReject bool
	lastAuthz    atomic.Value
	lastBody     atomic.Value
}

func newFakeAPI(t *testing.T, configure func(*fakeAPI)) *fakeAPI {
	t.Helper()
	api := &fakeAPI{rejectStatus: http.StatusUnauthorized}
	if configure != nil {
		configure(api)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+refresh.Path, func(w http.ResponseWriter, r *http.Request) {
		api.refreshHits.Add(1)
		deadline := time.Now().Add(2 * time.Second)
		for api.resourceHits.Load() < api.refreshWaitFor && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if api.refreshHold != nil {
			<-api.refreshHold
		}
		if api.refreshFails {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "refresh token expired"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "fresh"})
	})
	mux.HandleFunc("/resource", func(w http.ResponseWriter, r *http.Request) {
		api.resourceHits.Add(1)
		api.lastAuthz.Store(r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		api.lastBody.Store(string(body))
		if api.alwaysReject || r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(api.rejectStatus)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

type harness struct {
	store        *tokens.MemoryStore
	session      *session.Session
	refresher    *refresh.Refresher
	pipeline     *pipeline.Pipeline
	unauthorized atomic.Int64
}

func newHarness(api *fakeAPI, access, refreshToken string) *harness {
	ctx := context.Background()
	h := &harness{store: tokens.NewMemoryStore()}
	h.store.Set(ctx, tokens.Access, access)
	h.store.Set(ctx, tokens.Refresh, refreshToken)
	h.refresher = refresh.New(h.store, api.Client(), api.URL)
	h.session = session.New(h.store, session.WithTokenGuard(h.refresher))
	h.session.Initialize(ctx)
	h.pipeline = pipeline.New(h.store, h.refresher, api.Client(), h.session,
		pipeline.WithOnUnauthorized(func(context.Context) { h.unauthorized.Add(1) }))
	return h
}

func (api *fakeAPI) resource() pipeline.Request {
	return pipeline.Request{Method: http.MethodGet, URL: api.URL + "/resource"}
}

func TestCall_ValidTokenNoRefresh(t *testing.T) {
	api := newFakeAPI(t, nil)
	h := newHarness(api, "fresh", "refresh-1")

	out := h.pipeline.Call(context.Background(), api.resource())
	require.Equal(t, pipeline.Success, out.Kind)
	defer out.Response.Body.Close()
	require.Equal(t, http.StatusOK, out.Response.StatusCode)
	require.Equal(t, "Bearer fresh", api.lastAuthz.Load())
	require.Zero(t, api.refreshHits.Load())
}

func TestCall_401ThenRetrySucceeds(t *testing.T) {
	api := newFakeAPI(t, nil)
	h := newHarness(api, "stale", "refresh-1")

	out := h.pipeline.Call(context.Background(), api.resource())
	require.Equal(t, pipeline.Success, out.Kind)
	defer out.Response.Body.Close()
	require.Equal(t, http.StatusOK, out.Response.StatusCode)
	require.EqualValues(t, 1, api.refreshHits.Load(), "exactly one refresh")
	require.EqualValues(t, 2, api.resourceHits.Load(), "original request plus one retry")
	require.Equal(t, "Bearer fresh", api.lastAuthz.Load())

	access, _ := h.store.Get(context.Background(), tokens.Access)
	require.Equal(t, "fresh", access)
	require.Zero(t, h.unauthorized.Load())
}

func TestCall_RetryResultReturnedVerbatim(t *testing.T) {
	api := newFakeAPI(t, func(a *fakeAPI) { a.alwaysReject = true })
	h := newHarness(api, "stale", "refresh-1")

	out := h.pipeline.Call(context.Background(), api.resource())
	require.Equal(t, pipeline.Success, out.Kind)
	defer out.Response.Body.Close()
	require.Equal(t, http.StatusUnauthorized, out.Response.StatusCode)
	require.EqualValues(t, 1, api.refreshHits.Load())
	require.EqualValues(t, 2, api.resourceHits.Load(), "no second retry loop")
	require.True(t, h.session.Current().Authenticated)
}

func TestCall_RefreshFailureEndsSession(t *testing.T) {
	api := newFakeAPI(t, func(a *fakeAPI) { a.refreshFails = true })
	h := newHarness(api, "stale", "refresh-1")
	require.True(t, h.session.Current().Authenticated)

	out := h.pipeline.Call(context.Background(), api.resource())
	require.Equal(t, pipeline.Unauthorized, out.Kind)
	require.Nil(t, out.Response)
	require.ErrorIs(t, out.Err, errors.ErrUnauthorized)
	require.ErrorIs(t, out.Err, errors.ErrRefreshRejected)

	require.Equal(t, tokens.Credentials{}, tokens.Load(context.Background(), h.store))
	require.Equal(t, session.State{}, h.session.Current())
	require.EqualValues(t, 1, h.unauthorized.Load(), "exactly one navigate-to-login signal")
	require.EqualValues(t, 1, api.resourceHits.Load())
}

func TestCall_NoTokensAtAll(t *testing.T) {
	api := newFakeAPI(t, nil)
	h := newHarness(api, "", "")

	out := h.pipeline.Call(context.Background(), api.resource())
	require.Equal(t, pipeline.Unauthorized, out.Kind)
	require.ErrorIs(t, out.Err, errors.ErrNoRefreshToken)
	require.Zero(t, api.refreshHits.Load())
	require.Zero(t, api.resourceHits.Load())
	require.EqualValues(t, 1, h.unauthorized.Load())
}

func TestCall_MissingAccessTokenRefreshesFirst(t *testing.T) {
	api := newFakeAPI(t, nil)
	h := newHarness(api, "", "refresh-1")

	out := h.pipeline.Call(context.Background(), api.resource())
	require.Equal(t, pipeline.Success, out.Kind)
	defer out.Response.Body.Close()
	require.Equal(t, http.StatusOK, out.Response.StatusCode)
	require.EqualValues(t, 1, api.refreshHits.Load())
	require.EqualValues(t, 1, api.resourceHits.Load())
}

func TestCall_RefreshOnIsPerCall(t *testing.T) {
	tests := []struct {
		name          string
		refreshOn     []int
		wantStatus    int
		wantRefreshes int64
	}{
		{name: "default ignores 403", refreshOn: nil, wantStatus: http.StatusForbidden, wantRefreshes: 0},
		{name: "403 declared", refreshOn: []int{http.StatusUnauthorized, http.StatusForbidden}, wantStatus: http.StatusOK, wantRefreshes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, func(a *fakeAPI) { a.rejectStatus = http.StatusForbidden })
			h := newHarness(api, "stale", "refresh-1")

			req := api.resource()
			req.RefreshOn = tt.refreshOn
			out := h.pipeline.Call(context.Background(), req)
			require.Equal(t, pipeline.Success, out.Kind)
			defer out.Response.Body.Close()
			require.Equal(t, tt.wantStatus, out.Response.StatusCode)
			require.Equal(t, tt.wantRefreshes, api.refreshHits.Load())
		})
	}
}

func TestCall_BodyReplayedOnRetry(t *testing.T) {
	api := newFakeAPI(t, nil)
	h := newHarness(api, "stale", "refresh-1")

	req := api.resource()
	req.Method = http.MethodPost
	req.Body = []byte(`{"items":[{"id":1}]}`)
	req.Header = http.Header{"Content-Type": []string{"application/json"}}

	out := h.pipeline.Call(context.Background(), req)
	require.Equal(t, pipeline.Success, out.Kind)
	defer out.Response.Body.Close()
	require.Equal(t, http.StatusOK, out.Response.StatusCode)
	require.Equal(t, `{"items":[{"id":1}]}`, api.lastBody.Load())
}

func TestCall_NetworkErrorPassedThrough(t *testing.T) {
	api := newFakeAPI(t, nil)
	h := newHarness(api, "fresh", "refresh-1")

	req := pipeline.Request{Method: http.MethodGet, URL: "http://127.0.0.1:1/resource"}
	out := h.pipeline.Call(context.Background(), req)
	require.Equal(t, pipeline.NetworkError, out.Kind)
	require.ErrorIs(t, out.Err, errors.ErrNetworkFailure)
	require.True(t, h.session.Current().Authenticated, "network errors keep the session")
	require.Zero(t, h.unauthorized.Load())
}

func TestCall_ConcurrentRejectionsShareOneRefresh(t *testing.T) {
	const callers = 6
	api := newFakeAPI(t, func(a *fakeAPI) { a.refreshWaitFor = callers })
	h := newHarness(api, "stale", "refresh-1")

	var wg sync.WaitGroup
	kinds := make(chan pipeline.Kind, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := h.pipeline.Call(context.Background(), api.resource())
			if out.Response != nil {
				out.Response.Body.Close()
			}
			kinds <- out.Kind
		}()
	}
	wg.Wait()
	close(kinds)

	for k := range kinds {
		require.Equal(t, pipeline.Success, k)
	}
	require.EqualValues(t, 1, h.refresher.Rotations())
	require.EqualValues(t, 1, api.refreshHits.Load())
}

func TestCall_LogoutDuringRefreshEndsUnauthorized(t *testing.T) {
	ctx := context.Background()
	hold := make(chan struct{})
	api := newFakeAPI(t, func(a *fakeAPI) { a.refreshHold = hold })
	h := newHarness(api, "stale", "refresh-1")

	outCh := make(chan pipeline.Outcome, 1)
	go func() { outCh <- h.pipeline.Call(ctx, api.resource()) }()
	require.Eventually(t, func() bool { return api.refreshHits.Load() == 1 }, time.Second, 5*time.Millisecond)

	h.session.Logout(ctx)
	close(hold)

	out := <-outCh
	require.Equal(t, pipeline.Unauthorized, out.Kind)
	require.ErrorIs(t, out.Err, errors.ErrUnauthorized)
	require.Equal(t, session.State{}, h.session.Current())
	require.Equal(t, tokens.Credentials{}, tokens.Load(ctx, h.store))
	require.EqualValues(t, 1, api.resourceHits.Load(), "no retry without a token")
}

func TestCall_LoginDuringRefreshRetriesWithNewToken(t *testing.T) {
	ctx := context.Background()
	hold := make(chan struct{})
	api := newFakeAPI(t, func(a *fakeAPI) {
		a.refreshHold = hold
		a.refreshFails = true
	})
	h := newHarness(api, "stale", "refresh-1")

	outCh := make(chan pipeline.Outcome, 1)
	go func() { outCh <- h.pipeline.Call(ctx, api.resource()) }()
	require.Eventually(t, func() bool { return api.refreshHits.Load() == 1 }, time.Second, 5*time.Millisecond)

	h.refresher.Replace(ctx, tokens.Credentials{AccessToken: "fresh", RefreshToken: "login-refresh"})
	close(hold)

	out := <-outCh
	require.Equal(t, pipeline.Success, out.Kind)
	defer out.Response.Body.Close()
	require.Equal(t, http.StatusOK, out.Response.StatusCode)
	require.Equal(t, tokens.Credentials{AccessToken: "fresh", RefreshToken: "login-refresh"}, tokens.Load(ctx, h.store))
	require.Zero(t, h.unauthorized.Load())
}
