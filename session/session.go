// Package session tracks whether a browser session is authenticated and whether
// the user holds any course entitlement, and notifies subscribers on change.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/rs/zerolog/log"
)

// State is the pair of flags the presentation layer renders from.
// Entitled is never true while Authenticated is false.
type State struct {
	Authenticated bool `json:"isAuthenticated"`
	Entitled      bool `json:"hasEntitlement"`
}

// EntitlementChecker reports whether the logged in user owns at least one course.
type EntitlementChecker interface {
	HasEntitlement(ctx context.Context) (bool, error)
}

// EntitlementFunc adapts a function to EntitlementChecker.
type EntitlementFunc func(ctx context.Context) (bool, error)

func (f EntitlementFunc) HasEntitlement(ctx context.Context) (bool, error) {
	return f(ctx)
}

// TokenGuard clears the token store in step with any refresh in flight.
// *refresh.Refresher satisfies it.
type TokenGuard interface {
	Invalidate(ctx context.Context)
}

const defaultEntitlementTimeout = 10 * time.Second

// Session owns the State of one browser session.
type Session struct {
	store   tokens.Store
	guard   TokenGuard
	checker EntitlementChecker
	timeout time.Duration

	mu          sync.Mutex
	state       State
	generation  uint64
	subscribers map[uint64]func(State)
	nextSubID   uint64
	pending     sync.WaitGroup
	lookups     atomic.Int64
}

type Option func(*Session)

// WithEntitlementChecker sets the collaborator queried after each login.
func WithEntitlementChecker(c EntitlementChecker) Option {
	return func(s *Session) { s.checker = c }
}

// WithTokenGuard routes Logout's clear through g.
func WithTokenGuard(g TokenGuard) Option {
	return func(s *Session) { s.guard = g }
}

// WithEntitlementTimeout bounds each entitlement lookup.
func WithEntitlementTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(store tokens.Store, opts ...Option) *Session {
	s := &Session{
		store:       store,
		timeout:     defaultEntitlementTimeout,
		subscribers: make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UseEntitlementChecker replaces the checker. The API client that answers the
// question is itself built on top of the session, so it is attached after New.
func (s *Session) UseEntitlementChecker(c EntitlementChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checker = c
}

// Current returns the flags as of the last mutation.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive the state after every mutation. fn runs
// while the session is locked and must not call back into it.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Initialize derives the state from the token store at startup.
func (s *Session) Initialize(ctx context.Context) {
	if _, ok := s.store.Get(ctx, tokens.Access); !ok {
		return
	}
	s.Login(ctx)
}

// Login marks the session authenticated and resolves entitlement in the background.
func (s *Session) Login(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = State{Authenticated: true, Entitled: false}
	s.notifyLocked()
	s.mu.Unlock()

	s.resolve(ctx, gen)
}

// RefreshEntitlement re-queries entitlement without touching authentication,
// e.g. after a completed checkout.
func (s *Session) RefreshEntitlement(ctx context.Context) {
	s.mu.Lock()
	if !s.state.Authenticated {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.resolve(ctx, gen)
}

// Logout clears both flags and the token store. Entitlement lookups still in
// flight are discarded when they complete.
func (s *Session) Logout(ctx context.Context) {
	if s.guard != nil {
		s.guard.Invalidate(ctx)
	} else {
		s.store.Clear(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = State{}
	s.notifyLocked()
}

// Wait blocks until background entitlement lookups have finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

// Busy reports whether an entitlement lookup is still running.
func (s *Session) Busy() bool {
	return s.lookups.Load() > 0
}

func (s *Session) resolve(ctx context.Context, gen uint64) {
	s.mu.Lock()
	checker := s.checker
	s.mu.Unlock()
	if checker == nil {
		return
	}

	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.pending.Add(1)
	s.lookups.Add(1)
	go func() {
		defer s.pending.Done()
		defer s.lookups.Add(-1)
		defer cancel()

		entitled, err := checker.HasEntitlement(lookupCtx)
		if err != nil {
			log.Warn().Err(fmt.Errorf("%w: %w", errors.ErrEntitlementLookupFailed, err)).Msg("treating user as not entitled")
			entitled = false
		}
		s.applyEntitlement(gen, entitled)
	}()
}

func (s *Session) applyEntitlement(gen uint64, entitled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || !s.state.Authenticated {
		return
	}
	s.state.Entitled = entitled
	s.notifyLocked()
}

func (s *Session) notifyLocked() {
	for _, fn := range s.subscribers {
		fn(s.state)
	}
}
