package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/fewv-learns/tokens"
)

// Registry maps browser session ids to their Client bundles.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	factory tokens.Factory
	opts    Options
	now     func() time.Time
}

func NewRegistry(factory tokens.Factory, opts Options) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		factory: factory,
		opts:    opts,
		now:     time.Now,
	}
}

// Get returns the bundle for sessionID, building and initializing it from the
// token store on first use.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Client, error) {
	c, release, err := r.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	release()
	return c, nil
}

// Acquire is Get for the duration of a request: the bundle is not evicted
// until release is called.
func (r *Registry) Acquire(ctx context.Context, sessionID string) (*Client, func(), error) {
	if sessionID == "" {
		return nil, nil, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	c, ok := r.clients[sessionID]
	if ok {
		c.holds.Add(1)
	}
	r.mu.RUnlock()
	if !ok {
		c = r.build(ctx, sessionID)
	}
	return c, func() { r.release(c) }, nil
}

func (r *Registry) build(ctx context.Context, sessionID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[sessionID]; ok {
		c.holds.Add(1)
		return c
	}

	c := Build(sessionID, r.factory.Open(sessionID), r.opts)
	c.lastSeen = r.now()
	c.holds.Add(1)
	c.Session.Initialize(ctx)
	r.clients[sessionID] = c
	return c
}

// Delete drops the bundle and its stored tokens.
func (r *Registry) Delete(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, sessionID)
	r.factory.Forget(sessionID)
	return nil
}

// Evict drops bundles idle for longer than idle. Bundles held by a request or
// running an entitlement lookup are kept, so one store never has two
// Refreshers. Tokens stay in the store and a returning browser is rebuilt
// from them.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) && !c.busy() {
			delete(r.clients, id)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Registry) release(c *Client) {
	r.mu.Lock()
	c.lastSeen = r.now()
	r.mu.Unlock()
	c.holds.Add(-1)
}
