package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// SessionResponse mirrors the flags the navigation renders from
type SessionResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	HasEntitlement  bool   `json:"hasEntitlement"`
	Username        string `json:"username,omitempty"`
}

// SessionAPIHandler reports the browser session state as JSON
func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}

		state := c.Session.Current()
		resp := SessionResponse{
			IsAuthenticated: state.Authenticated,
			HasEntitlement:  state.Entitled,
		}
		if id, ok := c.Identity(r.Context()); ok && state.Authenticated {
			resp.Username = id.Name()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HealthzHandler is the liveness probe
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":          "ok",
			"browserSessions": s.clients.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}
