package courseapi

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	// Token is the short-lived access token.
	// Usage: sent as "Authorization: Bearer <token>" on every authenticated call
	Token *string `json:"token,omitempty"`

	// RefreshToken is exchanged at /auth/refresh when the access token is rejected.
	RefreshToken *string `json:"refreshToken,omitempty"`

	// Message explains a failure. Example: "Invalid credentials"
	Message string `json:"message,omitempty"`
}

// RegisterResponse is the body returned by POST /auth/register. A token may be
// present but is ignored; registration is followed by an explicit login.
type RegisterResponse struct {
	Message string  `json:"message,omitempty"`
	Token   *string `json:"token,omitempty"`
}

// CheckoutResponse is the body returned by POST /checkout/create-checkout-session.
type CheckoutResponse struct {
	// URL of the hosted payment page the browser is sent to.
	URL string `json:"url,omitempty"`

	Message string `json:"message,omitempty"`

	// PurchasedCourseIDs lists courses in the cart the user already owns.
	// Only present on a rejected checkout.
	PurchasedCourseIDs []int `json:"purchasedCourseIds,omitempty"`
}

// Course is one entry of the purchased-courses collection.
type Course struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// CourseContent is the lesson layout of a purchased course.
type CourseContent struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	Modules     []Module `json:"modules,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Instructor  string   `json:"instructor,omitempty"`
}

type Module struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Lesson struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	VideoURL string `json:"videoUrl,omitempty"`
}

// FirstVideo returns the course video, or the first lesson video when the
// course has none of its own.
func (c CourseContent) FirstVideo() string {
	if c.VideoURL != "" {
		return c.VideoURL
	}
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.VideoURL != "" {
				return l.VideoURL
			}
		}
	}
	return ""
}

// CoursePlayer is the detail shown next to the embedded course video.
type CoursePlayer struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	VimeoVideoID  string `json:"vimeoVideoId,omitempty"`
	Syllabus      string `json:"syllabus,omitempty"`
	InstructorBio string `json:"instructor_bio,omitempty"`
	Testimonials  string `json:"testimonials,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Level         string `json:"level,omitempty"`
}

// CheckoutItem is one cart line.
type CheckoutItem struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// messageBody picks the message out of an arbitrary error body.
type messageBody struct {
	Message string `json:"message,omitempty"`
}
