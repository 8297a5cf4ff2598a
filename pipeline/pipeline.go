// Package pipeline wraps calls to the course backend with bearer token
// attachment, a single refresh and retry on rejection, and session teardown
// when no valid token can be obtained.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/refresh"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/rs/zerolog/log"
)

// Doer is the HTTP transport; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SessionEnder tears the session down after an unrecoverable auth failure.
type SessionEnder interface {
	Logout(ctx context.Context)
}

// Pipeline is shared by every authenticated call of one browser session.
type Pipeline struct {
	store          tokens.Store
	refresher      *refresh.Refresher
	doer           Doer
	session        SessionEnder
	onUnauthorized func(ctx context.Context)
}

type Option func(*Pipeline)

// WithOnUnauthorized registers fn to run once per call that ends Unauthorized.
func WithOnUnauthorized(fn func(ctx context.Context)) Option {
	return func(p *Pipeline) { p.onUnauthorized = fn }
}

func New(store tokens.Store, refresher *refresh.Refresher, doer Doer, session SessionEnder, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		refresher: refresher,
		doer:      doer,
		session:   session,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Call issues req with the current access token. A status listed in
// req.RefreshOn triggers exactly one refresh and, if it succeeds, exactly one
// retry whose result is returned as is.
func (p *Pipeline) Call(ctx context.Context, req Request) Outcome {
	token, err := refresh.TokenSource(ctx, p.store, p.refresher).Token()
	if err != nil {
		return p.unauthorized(ctx, req, err)
	}

	resp, err := p.send(ctx, req, token.AccessToken)
	if err != nil {
		return Outcome{Kind: NetworkError, Err: err}
	}
	if !req.triggersRefresh(resp.StatusCode) {
		return Outcome{Kind: Success, Response: resp}
	}

	drain(resp)
	log.Debug().Str("method", req.Method).Str("url", req.URL).Int("status", resp.StatusCode).Msg("token rejected, refreshing")

	access, err := p.refresher.Refresh(ctx)
	if errors.Is(err, errors.ErrRefreshSuperseded) {
		// A login stored a new pair while the refresh ran; use it.
		if current, ok := p.store.Get(ctx, tokens.Access); ok {
			access, err = current, nil
		}
	}
	if err != nil {
		return p.unauthorized(ctx, req, err)
	}

	log.Debug().Str("method", req.Method).Str("url", req.URL).Msg("retrying with refreshed token")
	resp, err = p.send(ctx, req, access)
	if err != nil {
		return Outcome{Kind: NetworkError, Err: err}
	}
	return Outcome{Kind: Success, Response: resp}
}

func (p *Pipeline) send(ctx context.Context, req Request, access string) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request")
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	refresh.Bearer(access).SetAuthHeader(httpReq)

	resp, err := p.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrNetworkFailure, err)
	}
	return resp, nil
}

func (p *Pipeline) unauthorized(ctx context.Context, req Request, cause error) Outcome {
	// A caller that gave up has not proven the credentials bad.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{Kind: NetworkError, Err: ctxErr}
	}
	log.Info().Err(cause).Str("method", req.Method).Str("url", req.URL).Msg("no usable token, ending session")

	if p.session != nil {
		p.session.Logout(ctx)
	} else {
		p.refresher.Invalidate(ctx)
	}
	if p.onUnauthorized != nil {
		p.onUnauthorized(ctx)
	}
	return Outcome{Kind: Unauthorized, Err: fmt.Errorf("%w: %w", errors.ErrUnauthorized, cause)}
}

// drain lets the transport reuse the connection of a response that is discarded.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
