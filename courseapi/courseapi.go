// Package courseapi is the client for the remote course backend: login and
// registration, purchased courses, checkout and course content.
package courseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jrsteele09/fewv-learns/internal/errors"
	"github.com/jrsteele09/fewv-learns/pipeline"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/rs/zerolog/log"
)

const (
	PathLogin            = "/auth/login"
	PathRegister         = "/auth/register"
	PathPurchasedCourses = "/purchased/purchased-courses"
	PathCheckout         = "/checkout/create-checkout-session"
	PathCourseContent    = "/course-content/course-content/"
	PathCoursePlayer     = "/course-content/"

	defaultLoginError    = "Invalid username or password"
	defaultRegisterError = "Error registering user. Please try again."
	defaultCheckoutError = "Error processing payment. Please try again."
)

// APIError is a business-level rejection from the backend.
type APIError struct {
	Status             int
	Message            string
	PurchasedCourseIDs []int
}

func (e *APIError) Error() string {
	return e.Message
}

// Caller runs an authenticated request; *pipeline.Pipeline satisfies it.
type Caller interface {
	Call(ctx context.Context, req pipeline.Request) pipeline.Outcome
}

// TokenWriter stores the pair issued by a login; *refresh.Refresher
// satisfies it.
type TokenWriter interface {
	Replace(ctx context.Context, c tokens.Credentials)
}

// API talks to the backend on behalf of one browser session.
type API struct {
	baseURL  string
	doer     pipeline.Doer
	tokens   TokenWriter
	pipeline Caller
}

func New(baseURL string, doer pipeline.Doer, writer TokenWriter, caller Caller) *API {
	return &API{
		baseURL:  baseURL,
		doer:     doer,
		tokens:   writer,
		pipeline: caller,
	}
}

// Login exchanges credentials for a token pair and stores both tokens.
// Marking the session logged in is left to the caller.
func (a *API) Login(ctx context.Context, username, password string) error {
	if err := ValidateLogin(username, password); err != nil {
		return err
	}

	var body LoginResponse
	status, err := a.postAnonymous(ctx, PathLogin, loginRequest{Username: username, Password: password}, &body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 || body.Token == nil || *body.Token == "" {
		msg := body.Message
		if msg == "" {
			msg = defaultLoginError
		}
		return &APIError{Status: status, Message: msg}
	}

	creds := tokens.Credentials{AccessToken: *body.Token}
	if body.RefreshToken != nil {
		creds.RefreshToken = *body.RefreshToken
	}
	a.tokens.Replace(ctx, creds)
	log.Info().Str("username", username).Msg("user logged in")
	return nil
}

// Register creates an account. It does not log the user in.
func (a *API) Register(ctx context.Context, username, email, password string) error {
	if err := ValidateRegistration(username, email, password); err != nil {
		return err
	}

	var body RegisterResponse
	status, err := a.postAnonymous(ctx, PathRegister, registerRequest{Username: username, Password: password, Email: email}, &body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		msg := body.Message
		if msg == "" {
			msg = defaultRegisterError
		}
		return &APIError{Status: status, Message: msg}
	}
	log.Info().Str("username", username).Msg("user registered")
	return nil
}

// PurchasedCourses lists the courses the user owns, without duplicates.
func (a *API) PurchasedCourses(ctx context.Context) ([]Course, error) {
	resp, err := a.call(ctx, pipeline.Request{
		Method:    http.MethodGet,
		URL:       a.baseURL + PathPurchasedCourses,
		RefreshOn: []int{http.StatusUnauthorized, http.StatusForbidden},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp, "Error fetching purchased courses")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrNetworkFailure, err)
	}
	courses, err := decodePurchased(data)
	if err != nil {
		return nil, err
	}
	return dedupe(courses), nil
}

// HasEntitlement reports whether the user owns at least one course.
func (a *API) HasEntitlement(ctx context.Context) (bool, error) {
	courses, err := a.PurchasedCourses(ctx)
	if err != nil {
		return false, err
	}
	return len(courses) > 0, nil
}

// CreateCheckoutSession returns the hosted payment page URL for the cart.
func (a *API) CreateCheckoutSession(ctx context.Context, items []CheckoutItem) (string, error) {
	if err := ValidateCheckout(items); err != nil {
		return "", err
	}
	payload, err := json.Marshal(checkoutRequest{Items: items})
	if err != nil {
		return "", errors.Wrapf(err, "failed to encode checkout request")
	}

	resp, err := a.call(ctx, pipeline.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + PathCheckout,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   payload,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body CheckoutResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || body.URL == "" {
		msg := body.Message
		if msg == "" {
			msg = defaultCheckoutError
		}
		return "", &APIError{Status: resp.StatusCode, Message: msg, PurchasedCourseIDs: body.PurchasedCourseIDs}
	}
	return body.URL, nil
}

// CourseContent fetches the module and lesson layout of a course.
func (a *API) CourseContent(ctx context.Context, courseID int) (*CourseContent, error) {
	var content CourseContent
	if err := a.getJSON(ctx, PathCourseContent+strconv.Itoa(courseID), "Error loading course content", &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// CoursePlayer fetches the video and syllabus of a course.
func (a *API) CoursePlayer(ctx context.Context, courseID int) (*CoursePlayer, error) {
	var player CoursePlayer
	if err := a.getJSON(ctx, PathCoursePlayer+strconv.Itoa(courseID), "Error loading course", &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (a *API) getJSON(ctx context.Context, path, fallback string, out any) error {
	resp, err := a.call(ctx, pipeline.Request{
		Method:    http.MethodGet,
		URL:       a.baseURL + path,
		RefreshOn: []int{http.StatusUnauthorized, http.StatusForbidden},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", errors.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

// call maps pipeline outcomes onto errors. A nil error means a response the
// caller must close.
func (a *API) call(ctx context.Context, req pipeline.Request) (*http.Response, error) {
	out := a.pipeline.Call(ctx, req)
	switch out.Kind {
	case pipeline.Success:
		return out.Response, nil
	case pipeline.Unauthorized:
		if !errors.Is(out.Err, errors.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", errors.ErrUnauthorized, out.Err)
		}
		return nil, out.Err
	default:
		if !errors.Is(out.Err, errors.ErrNetworkFailure) {
			return nil, fmt.Errorf("%w: %w", errors.ErrNetworkFailure, out.Err)
		}
		return nil, out.Err
	}
}

func (a *API) postAnonymous(ctx context.Context, path string, payload, out any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.doer.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	// Error bodies are not always JSON; the status still decides.
	_ = json.NewDecoder(resp.Body).Decode(out)
	return resp.StatusCode, nil
}

func apiError(resp *http.Response, fallback string) *APIError {
	var body messageBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Message == "" {
		body.Message = fallback
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

// decodePurchased accepts either a bare array or an object wrapping one.
func decodePurchased(data []byte) ([]Course, error) {
	var list []Course
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Courses []Course `json:"courses"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, errors.Wrapf(err, "failed to decode purchased courses")
	}
	return wrapped.Courses, nil
}

func dedupe(courses []Course) []Course {
	seen := make(map[int]struct{}, len(courses))
	unique := make([]Course, 0, len(courses))
	for _, c := range courses {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
