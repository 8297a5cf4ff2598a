package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	page := func(h http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
		return ChainMiddleware(h, s.HTMLMiddleWare(mw...)...)
	}

	// Public pages
	s.RegisterRouteHandler("GET /{$}", page(s.IndexHandler()))
	s.RegisterRouteHandler("GET "+RouteTeam, page(s.TeamHandler()))
	s.RegisterRouteHandler("GET "+RouteCourses, page(s.CoursesHandler()))
	s.RegisterRouteHandler("GET "+RouteCourseDetails, page(s.CourseDetailsHandler()))
	s.RegisterRouteHandler("GET "+RouteSuccess, page(s.SuccessHandler()))

	// LOGIN / REGISTER
	s.RegisterRouteHandler("GET "+RouteLogin, page(s.LoginPageUIHandler()))
	s.RegisterRouteHandler("POST "+RouteLogin, page(s.LoginSubmissionHandler()))
	s.RegisterRouteHandler("GET "+RouteRegister, page(s.RegisterGetHandler()))
	s.RegisterRouteHandler("POST "+RouteRegister, page(s.RegisterPostHandler()))
	s.RegisterRouteHandler("POST "+RouteLogout, page(s.LogoutHandler()))

	s.RegisterRouteHandler("POST "+RouteCheckout, page(s.CheckoutHandler()))

	// Signed-in pages
	s.RegisterRouteHandler("GET "+RouteBlogs, page(s.BlogsHandler(), s.Guard(false)))
	s.RegisterRouteHandler("GET "+RouteBlog, page(s.BlogHandler(), s.Guard(false)))
	s.RegisterRouteHandler("GET "+RouteMyCourses, page(s.MyCoursesHandler(), s.Guard(false)))
	s.RegisterRouteHandler("GET "+RouteStartCourse, page(s.StartCourseHandler(), s.Guard(true)))
	s.RegisterRouteHandler("GET "+RouteCoursePlayer, page(s.CoursePlayerHandler(), s.Guard(true)))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET /", page(s.NotFoundHandler()))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError("GET", filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
