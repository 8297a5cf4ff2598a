package server

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// RegisterForm keeps the non-secret fields across a failed submission
type RegisterForm struct {
	Username string
	Email    string
}

// RegisterGetHandler renders the registration page
func (s *Server) RegisterGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := RegisterForm{
			Username: r.URL.Query().Get("username"),
			Email:    r.URL.Query().Get("email"),
		}
		s.renderPage(w, r, http.StatusOK, "register.html", "Create Account", form)
	}
}

// RegisterPostHandler creates the account and sends the browser to log in
func (s *Server) RegisterPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, RouteRegister, "Invalid form data")
			return
		}

		username := r.FormValue("username")
		email := r.FormValue("email")
		password := r.FormValue("password")

		if err := c.API.Register(r.Context(), username, email, password); err != nil {
			log.Info().Err(err).Str("username", username).Msg("Registration failed")
			q := url.Values{}
			q.Set("username", username)
			q.Set("email", email)
			redirectWithError(w, r, RouteRegister+"?"+q.Encode(), userMessage(err, "Error registering user. Please try again."))
			return
		}

		redirectWithNotice(w, r, withQuery(RouteLogin, "username", username), "Registration successful! You can now log in.")
	}
}
