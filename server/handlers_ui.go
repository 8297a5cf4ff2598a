package server

import (
	"net/http"

	"github.com/jrsteele09/fewv-learns/client"
	"github.com/jrsteele09/fewv-learns/courseapi"
	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/session"
	"github.com/rs/zerolog/log"
)

const (
	msgNetworkError   = "Network error. Please check your connection and try again."
	msgSessionExpired = "Session expired. Please log in again."
)

// PageData is the template model shared by every page
type PageData struct {
	AppName  string
	Title    string
	State    session.State
	Username string
	Notice   string // one-time message carried by a redirect
	Error    string
	Content  any
}

func (s *Server) pageData(r *http.Request, title string, content any) PageData {
	data := PageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Notice:  r.URL.Query().Get("notice"),
		Error:   r.URL.Query().Get("error"),
		Content: content,
	}
	if c := clientFromContext(r.Context()); c != nil {
		data.State = c.Session.Current()
		if id, ok := c.Identity(r.Context()); ok && data.State.Authenticated {
			data.Username = id.Name()
		}
	}
	return data
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name, title string, content any) {
	s.pages.render(w, status, name, s.pageData(r, title, content))
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, what string) {
	s.renderPage(w, r, http.StatusNotFound, "not_found.html", "Not Found", what)
}

// requireClient fetches the bundle or fails the request
func requireClient(w http.ResponseWriter, r *http.Request) (*client.Client, bool) {
	c := clientFromContext(r.Context())
	if c == nil {
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return c, true
}

// userMessage turns a course API failure into text for the page
func userMessage(err error, fallback string) string {
	var apiErr *courseapi.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, errors.ErrInvalidInput):
		return courseapi.UserMessage(err)
	case errors.Is(err, errors.ErrNetworkFailure):
		return msgNetworkError
	default:
		log.Err(err).Msg("Unexpected course API failure")
		return fallback
	}
}

// sessionEnded handles the Unauthorized outcome: the session is already
// cleared, so the browser is sent to log in.
func sessionEnded(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, errors.ErrUnauthorized) {
		return false
	}
	redirectWithError(w, r, RouteLogin, msgSessionExpired)
	return true
}
