// Package refresh exchanges a stored refresh token for a new access token.
package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Path is the backend route that accepts refresh requests.
const Path = "/auth/refresh"

const flightKey = "refresh"

// Doer is the HTTP transport; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        *string `json:"token,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// Refresher performs at most one refresh request at a time per token store.
// Concurrent callers share the result of the attempt already in flight.
//
// Every write to the store goes through the Refresher's lock. Replace and
// Invalidate advance the epoch, and a refresh that started in an older epoch
// discards its response instead of writing it.
type Refresher struct {
	store    tokens.Store
	doer     Doer
	endpoint string

	mu    sync.Mutex
	epoch uint64

	group     singleflight.Group
	rotations atomic.Int64
}

// New creates a Refresher posting to baseURL + Path.
func New(store tokens.Store, doer Doer, baseURL string) *Refresher {
	return &Refresher{
		store:    store,
		doer:     doer,
		endpoint: baseURL + Path,
	}
}

// Rotations reports how many refresh requests have been sent.
func (r *Refresher) Rotations() int64 {
	return r.rotations.Load()
}

// Replace stores a new token pair, e.g. after a login.
func (r *Refresher) Replace(ctx context.Context, c tokens.Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	tokens.Save(ctx, r.store, c)
}

// Invalidate clears both tokens. A refresh in flight will not restore them.
func (r *Refresher) Invalidate(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.store.Clear(ctx)
}

// Refresh returns a new access token. It fails with ErrNoRefreshToken without
// any network traffic when no refresh token is stored. Any other failure
// clears both tokens. There is no retry.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	// The shared attempt must not die with whichever caller started it.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(flightKey, func() (any, error) {
		return r.refresh(shared)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	r.mu.Lock()
	epoch := r.epoch
	refreshToken, ok := r.store.Get(ctx, tokens.Refresh)
	r.mu.Unlock()
	if !ok {
		return "", errors.ErrNoRefreshToken
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode refresh request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrapf(err, "failed to create refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	r.rotations.Add(1)
	resp, err := r.doer.Do(req)
	if err != nil {
		if !r.commit(epoch, func() { r.store.Clear(ctx) }) {
			return "", errors.ErrRefreshSuperseded
		}
		log.Warn().Err(err).Msg("refresh request failed, tokens cleared")
		return "", fmt.Errorf("%w: %w", errors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	var parsed refreshResponse
	data, readErr := io.ReadAll(resp.Body)
	if readErr == nil {
		_ = json.Unmarshal(data, &parsed)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || parsed.Token == nil || *parsed.Token == "" {
		if !r.commit(epoch, func() { r.store.Clear(ctx) }) {
			return "", errors.ErrRefreshSuperseded
		}
		log.Info().Int("status", resp.StatusCode).Str("message", parsed.Message).Msg("refresh rejected, tokens cleared")
		return "", errors.Wrapf(errors.ErrRefreshRejected, "status %d", resp.StatusCode)
	}

	stored := r.commit(epoch, func() {
		r.store.Set(ctx, tokens.Access, *parsed.Token)
		if parsed.RefreshToken != nil && *parsed.RefreshToken != "" {
			r.store.Set(ctx, tokens.Refresh, *parsed.RefreshToken)
		}
	})
	if !stored {
		log.Info().Msg("tokens replaced during refresh, response discarded")
		return "", errors.ErrRefreshSuperseded
	}
	log.Debug().Msg("access token refreshed")
	return *parsed.Token, nil
}

// commit runs write under the lock if no Replace or Invalidate happened since
// epoch was read.
func (r *Refresher) commit(epoch uint64, write func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != epoch {
		return false
	}
	write()
	return true
}
