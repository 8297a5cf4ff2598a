package pipeline

import "net/http"

// Kind classifies the result of an authenticated call.
type Kind int

const (
	// Success means the backend answered. The status may be anything, including
	// a second 401 after a retry.
	Success Kind = iota
	// Unauthorized means no usable token could be obtained. The session has
	// already been ended and the caller should send the user to login.
	Unauthorized
	// NetworkError means the request never produced a response.
	NetworkError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Unauthorized:
		return "unauthorized"
	case NetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of Pipeline.Call. Response is set only for Success and
// the caller must close its body.
type Outcome struct {
	Kind     Kind
	Response *http.Response
	Err      error
}

// Request describes a call that may be replayed once after a refresh.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// RefreshOn lists the statuses that trigger a refresh. Empty means {401}.
	RefreshOn []int
}

var defaultRefreshOn = []int{http.StatusUnauthorized}

func (r Request) triggersRefresh(status int) bool {
	codes := r.RefreshOn
	if len(codes) == 0 {
		codes = defaultRefreshOn
	}
	for _, c := range codes {
		if c == status {
			return true
		}
	}
	return false
}
