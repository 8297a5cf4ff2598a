package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/fewv-learns/client"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClient stores the browser's client bundle
	ContextKeyClient ContextKey = "client"
)

// BrowserSessionMiddleware makes sure every browser carries a session cookie
// and attaches the matching client bundle to the request context.
func (s *Server) BrowserSessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(browserSessionCookie); err == nil && validBrowserSessionID(cookie.Value) {
			sessionID = cookie.Value
		} else {
			sessionID = newBrowserSessionID()
			s.SetBrowserSessionCookie(w, sessionID, r, s.config.GetSessionCookieMaxAge())
		}

		c, release, err := s.clients.Acquire(r.Context(), sessionID)
		if err != nil {
			log.Err(err).Msg("Failed to load browser session")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer release()

		ctx := context.WithValue(r.Context(), ContextKeyClient, c)
		next(w, r.WithContext(ctx))
	}
}

// clientFromContext returns the bundle set by BrowserSessionMiddleware
func clientFromContext(ctx context.Context) *client.Client {
	c, _ := ctx.Value(ContextKeyClient).(*client.Client)
	return c
}

// Guard denies the page unless the session is signed in and, when
// requireEntitlement is set, owns a course. A denial is a redirect carrying
// its notice once.
func (s *Server) Guard(requireEntitlement bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			c := clientFromContext(r.Context())
			if c == nil {
				redirectSuccess(w, r, s.config.GetLoginRedirect())
				return
			}

			decision := c.Gate.Evaluate(requireEntitlement)
			if !decision.Allowed() {
				log.Debug().Str("path", r.URL.Path).Stringer("reason", decision.Denial.Reason).Msg("access denied")
				redirectWithNotice(w, r, decision.Denial.RedirectTo, decision.Denial.Notice)
				return
			}
			next(w, r)
		}
	}
}
