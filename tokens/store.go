package tokens

import "context"

// Kind names one of the two credentials a browser session holds.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// Key is the persisted name of the credential.
func (k Kind) Key() string {
	switch k {
	case Access:
		return "token"
	case Refresh:
		return "refreshToken"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	return k.Key()
}

// Kinds lists every credential kind, in persistence order.
var Kinds = []Kind{Access, Refresh}

// Store is a dumb persistent map holding the access and refresh tokens of one
// browser session. Absence is reported as ("", false) and is never an error;
// setting the empty string removes the value.
type Store interface {
	Get(ctx context.Context, kind Kind) (string, bool)
	Set(ctx context.Context, kind Kind, value string)
	Clear(ctx context.Context)
}

// Factory opens the Store belonging to a browser session.
type Factory interface {
	Open(sessionID string) Store
	Forget(sessionID string)
}

// Credentials is a snapshot of both tokens. Either may be empty.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Load reads a snapshot of the store.
func Load(ctx context.Context, store Store) Credentials {
	access, _ := store.Get(ctx, Access)
	refresh, _ := store.Get(ctx, Refresh)
	return Credentials{AccessToken: access, RefreshToken: refresh}
}

// Save writes both tokens; empty fields delete the stored value.
func Save(ctx context.Context, store Store, c Credentials) {
	store.Set(ctx, Access, c.AccessToken)
	store.Set(ctx, Refresh, c.RefreshToken)
}
