package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/fewv-learns/catalog"
	"github.com/jrsteele09/fewv-learns/courseapi"
	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/rs/zerolog/log"
)

// CoursesHandler renders the catalog with its checkout form
func (s *Server) CoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, "courses.html", "Our Courses", catalog.Courses())
	}
}

func (s *Server) CourseDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			s.renderNotFound(w, r, "course")
			return
		}
		detail, err := catalog.Detail(id)
		if err != nil {
			s.renderNotFound(w, r, "course")
			return
		}
		s.renderPage(w, r, http.StatusOK, "course_details.html", detail.Title, detail)
	}
}

// CheckoutHandler starts a hosted checkout for the selected courses
func (s *Server) CheckoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, RouteCourses, "Invalid form data")
			return
		}

		items, err := cartFromForm(r.Form["course"])
		if err != nil {
			redirectWithError(w, r, RouteCourses, "Please select at least one course")
			return
		}
		if len(items) == 0 {
			redirectWithError(w, r, RouteCourses, "Please select at least one course")
			return
		}

		if !c.Session.Current().Authenticated {
			redirectWithNotice(w, r, RouteLogin, "Please log in to purchase courses")
			return
		}

		checkoutURL, err := c.API.CreateCheckoutSession(r.Context(), items)
		if err != nil {
			if sessionEnded(w, r, err) {
				return
			}
			redirectWithError(w, r, RouteCourses, checkoutMessage(err))
			return
		}
		log.Info().Int("items", len(items)).Msg("checkout session created")
		redirectSuccess(w, r, checkoutURL)
	}
}

func cartFromForm(values []string) ([]courseapi.CheckoutItem, error) {
	items := make([]courseapi.CheckoutItem, 0, len(values))
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: course id %q", errors.ErrInvalidInput, v)
		}
		if _, err := catalog.CourseByID(id); err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, courseapi.CheckoutItem{ID: id, Quantity: 1})
	}
	return items, nil
}

func checkoutMessage(err error) string {
	var apiErr *courseapi.APIError
	if errors.As(err, &apiErr) && len(apiErr.PurchasedCourseIDs) > 0 {
		return "You have already purchased: " + strings.Join(catalog.Names(apiErr.PurchasedCourseIDs), ", ")
	}
	return userMessage(err, "Error processing payment. Please try again.")
}

// SuccessHandler is where the payment provider returns the browser
func (s *Server) SuccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c := clientFromContext(r.Context()); c != nil {
			// The purchase just completed, so the cached answer is stale.
			c.Session.RefreshEntitlement(r.Context())
		}
		s.renderPage(w, r, http.StatusOK, "success.html", "Payment successful", nil)
	}
}

func (s *Server) BlogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, "blogs.html", "Our Blogs", catalog.Blogs())
	}
}

func (s *Server) BlogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := catalog.BlogByID(r.PathValue("id"))
		if err != nil {
			s.renderNotFound(w, r, "blog")
			return
		}
		s.renderPage(w, r, http.StatusOK, "blog.html", blog.Title, blog)
	}
}

// MyCoursesHandler lists purchased courses
func (s *Server) MyCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}

		courses, err := c.API.PurchasedCourses(r.Context())
		if err != nil {
			if sessionEnded(w, r, err) {
				return
			}
			data := s.pageData(r, "My Courses", []courseapi.Course(nil))
			data.Error = userMessage(err, "Error fetching purchased courses. Please try again.")
			s.pages.render(w, http.StatusBadGateway, "my_courses.html", data)
			return
		}
		s.renderPage(w, r, http.StatusOK, "my_courses.html", "My Courses", courses)
	}
}

// StartCourseHandler shows the lesson layout of a purchased course
func (s *Server) StartCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			s.renderNotFound(w, r, "course")
			return
		}

		content, err := c.API.CourseContent(r.Context(), id)
		if err != nil {
			s.courseError(w, r, err, "Error loading course content. Please try again.")
			return
		}
		s.renderPage(w, r, http.StatusOK, "course_content.html", content.Name, content)
	}
}

// CoursePlayerHandler embeds the course video
func (s *Server) CoursePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := requireClient(w, r)
		if !ok {
			return
		}
		id, err := strconv.Atoi(r.PathValue("courseId"))
		if err != nil {
			s.renderNotFound(w, r, "course")
			return
		}

		player, err := c.API.CoursePlayer(r.Context(), id)
		if err != nil {
			s.courseError(w, r, err, "Error loading course. Please try again.")
			return
		}
		s.renderPage(w, r, http.StatusOK, "course_player.html", player.Name, player)
	}
}

func (s *Server) courseError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if sessionEnded(w, r, err) {
		return
	}
	if errors.Is(err, errors.ErrNotFound) {
		s.renderNotFound(w, r, "course")
		return
	}
	data := s.pageData(r, "Course unavailable", nil)
	data.Error = userMessage(err, fallback)
	s.pages.render(w, http.StatusBadGateway, "course_error.html", data)
}
