package server

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// browserSessionCookie identifies the browser; its value keys the token store.
const browserSessionCookie = "fewv_sid"

// newBrowserSessionID creates an unguessable browser session id
func newBrowserSessionID() string {
	return uuid.NewString()
}

// validBrowserSessionID rejects anything we did not mint
func validBrowserSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Server) SetBrowserSessionCookie(w http.ResponseWriter, sessionID string, r *http.Request, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     browserSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithNotice carries a one-time message to the next page
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, withQuery(path, "notice", notice))
}

func withQuery(path, key, value string) string {
	if value == "" {
		return path
	}
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
