package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LoginForm is the content of the login page
type LoginForm struct {
	Username string // Preserve username on error
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := LoginForm{Username: r.URL.Query().Get("username")}
		s.renderPage(w, r, http.StatusOK, "login.html", "Login", form)
	}
}

// LoginSubmissionHandler exchanges the credentials for tokens and marks the
// browser session logged in.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, RouteLogin, "Invalid form data")
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		if err := c.API.Login(r.Context(), username, password); err != nil {
			log.Info().Err(err).Str("username", username).Msg("Login failed")
			s.renderLoginError(w, r, userMessage(err, "Invalid username or password"), username)
			return
		}

		c.Session.Login(r.Context())
		redirectSuccess(w, r, RouteBlogs)
	}
}

// LogoutHandler clears the tokens and forgets the browser session
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c := clientFromContext(r.Context()); c != nil {
			c.Session.Logout(r.Context())
			if err := s.clients.Delete(c.ID); err != nil {
				log.Err(err).Msg("Failed to delete browser session")
			}
		}
		s.SetBrowserSessionCookie(w, "", r, -1) // Delete cookie
		redirectWithNotice(w, r, RouteLogin, "You have been logged out")
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username string) {
	redirectURL := withQuery(RouteLogin, "username", username)
	redirectWithError(w, r, redirectURL, errorMsg)
}
