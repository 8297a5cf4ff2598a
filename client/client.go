// Package client assembles the per-browser components: token store, session,
// refresher, request pipeline, course API and access gate.
package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/fewv-learns/courseapi"
	"github.com/jrsteele09/fewv-learns/gate"
	"github.com/jrsteele09/fewv-learns/pipeline"
	"github.com/jrsteele09/fewv-learns/refresh"
	"github.com/jrsteele09/fewv-learns/session"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/rs/zerolog/log"
)

// Options are shared by every bundle a Registry builds.
type Options struct {
	BaseURL            string
	HTTP               pipeline.Doer
	EntitlementTimeout time.Duration
	LoginRedirect      string
	CatalogRedirect    string
}

func (o Options) httpDoer() pipeline.Doer {
	if o.HTTP != nil {
		return o.HTTP
	}
	return http.DefaultClient
}

// Client is everything one browser session needs. The fields are wired to
// each other and must not be swapped after Build.
type Client struct {
	ID        string
	Store     tokens.Store
	Session   *session.Session
	Refresher *refresh.Refresher
	Pipeline  *pipeline.Pipeline
	API       *courseapi.API
	Gate      *gate.Gate

	lastSeen time.Time
	holds    atomic.Int64
}

// busy reports whether a request holds the bundle or a background lookup
// is still using it.
func (c *Client) busy() bool {
	return c.holds.Load() > 0 || c.Session.Busy()
}

// Build wires a bundle around store. The session is not initialized.
func Build(id string, store tokens.Store, opts Options) *Client {
	doer := opts.httpDoer()

	refresher := refresh.New(store, doer, opts.BaseURL)
	sess := session.New(store,
		session.WithTokenGuard(refresher),
		session.WithEntitlementTimeout(opts.EntitlementTimeout),
	)
	p := pipeline.New(store, refresher, doer, sess,
		pipeline.WithOnUnauthorized(func(context.Context) {
			log.Info().Str("browserSession", id).Msg("session ended, login required")
		}),
	)
	api := courseapi.New(opts.BaseURL, doer, refresher, p)
	sess.UseEntitlementChecker(api)

	return &Client{
		ID:        id,
		Store:     store,
		Session:   sess,
		Refresher: refresher,
		Pipeline:  p,
		API:       api,
		Gate:      gate.New(sess, gate.WithLoginRedirect(opts.LoginRedirect), gate.WithCatalogRedirect(opts.CatalogRedirect)),
	}
}

// Identity returns display claims of the stored access token, if any.
func (c *Client) Identity(ctx context.Context) (tokens.Identity, bool) {
	access, ok := c.Store.Get(ctx, tokens.Access)
	if !ok {
		return tokens.Identity{}, false
	}
	return tokens.ParseIdentity(access)
}
