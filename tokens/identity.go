package tokens

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Identity is the display information carried inside an access token.
type Identity struct {
	Subject   string
	Username  string
	ExpiresAt time.Time
}

// Name picks the friendliest label available.
func (i Identity) Name() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Subject
}

// ParseIdentity reads the claims of a JWT access token without verifying it.
// The result is for display only; the backend remains the authority on validity.
func ParseIdentity(accessToken string) (Identity, bool) {
	if accessToken == "" {
		return Identity{}, false
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(accessToken, jwtlib.MapClaims{})
	if err != nil {
		return Identity{}, false
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return Identity{}, false
	}

	var id Identity
	id.Subject, _ = claims.GetSubject()
	if username, ok := claims["username"].(string); ok {
		id.Username = username
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if id.Subject == "" && id.Username == "" {
		return Identity{}, false
	}
	return id, true
}
