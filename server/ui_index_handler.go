package server

import (
	"net/http"

	"github.com/jrsteele09/fewv-learns/catalog"
)

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, "index.html", "Home", catalog.Courses())
	}
}

// TeamHandler lists the course instructors
func (s *Server) TeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var team []catalog.CourseDetail
		for _, c := range catalog.Courses() {
			if d, err := catalog.Detail(c.ID); err == nil {
				team = append(team, d)
			}
		}
		s.renderPage(w, r, http.StatusOK, "team.html", "Meet the Team", team)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderNotFound(w, r, "page")
	}
}
