// Package gate decides whether a protected page may be rendered for the
// current session.
package gate

import "github.com/jrsteele09/fewv-learns/session"

// Reason explains a denial.
type Reason int

const (
	NotAuthenticated Reason = iota + 1
	NoEntitlement
)

func (r Reason) String() string {
	switch r {
	case NotAuthenticated:
		return "not_authenticated"
	case NoEntitlement:
		return "no_entitlement"
	default:
		return "allowed"
	}
}

const (
	DefaultLoginRedirect   = "/register"
	DefaultCatalogRedirect = "/courses"

	NoticeRegister = "Please register to access this content."
	NoticePurchase = "Please purchase a course to access this content."
)

// Denial is rendered once by the presentation layer: as a redirect to
// RedirectTo carrying Notice.
type Denial struct {
	Reason     Reason
	RedirectTo string
	Notice     string
}

// Decision is either Allow (Denial nil) or a Denial.
type Decision struct {
	Denial *Denial
}

func (d Decision) Allowed() bool {
	return d.Denial == nil
}

// StateReader exposes the session flags the gate evaluates.
type StateReader interface {
	Current() session.State
}

type Gate struct {
	state           StateReader
	loginRedirect   string
	catalogRedirect string
}

type Option func(*Gate)

func WithLoginRedirect(path string) Option {
	return func(g *Gate) {
		if path != "" {
			g.loginRedirect = path
		}
	}
}

func WithCatalogRedirect(path string) Option {
	return func(g *Gate) {
		if path != "" {
			g.catalogRedirect = path
		}
	}
}

func New(state StateReader, opts ...Option) *Gate {
	g := &Gate{
		state:           state,
		loginRedirect:   DefaultLoginRedirect,
		catalogRedirect: DefaultCatalogRedirect,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate reads the session flags only; it never touches the network.
func (g *Gate) Evaluate(requireEntitlement bool) Decision {
	st := g.state.Current()
	switch {
	case !st.Authenticated:
		return Decision{Denial: &Denial{Reason: NotAuthenticated, RedirectTo: g.loginRedirect, Notice: NoticeRegister}}
	case requireEntitlement && !st.Entitled:
		return Decision{Denial: &Denial{Reason: NoEntitlement, RedirectTo: g.catalogRedirect, Notice: NoticePurchase}}
	default:
		return Decision{}
	}
}
