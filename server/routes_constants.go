package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public pages
	RouteHome          = "/"
	RouteTeam          = "/team"
	RouteCourses       = "/courses"
	RouteCourseDetails = "/course-details/{id}"
	RouteSuccess       = "/success"

	// Auth Routes
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteLogout   = "/logout"

	// Checkout
	RouteCheckout = "/checkout"

	// Signed-in pages
	RouteBlogs     = "/blogs"
	RouteBlog      = "/blog/{id}"
	RouteMyCourses = "/my-courses"

	// Signed-in pages that also need a purchased course
	RouteStartCourse  = "/start-course/{id}"
	RouteCoursePlayer = "/course-player/{courseId}"

	// API Routes
	RouteAPISession = "/api/session"
	RouteHealthz    = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
