package tokens_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/fewv-learns/tokens"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("unknown-to-the-frontend"))
	require.NoError(t, err)
	return s
}

func TestParseIdentity(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("username and expiry", func(t *testing.T) {
		id, ok := tokens.ParseIdentity(signed(t, jwtlib.MapClaims{
			"sub":      "42",
			"username": "ada",
			"exp":      exp.Unix(),
		}))
		require.True(t, ok)
		require.Equal(t, "42", id.Subject)
		require.Equal(t, "ada", id.Name())
		require.True(t, exp.Equal(id.ExpiresAt))
	})

	t.Run("subject only", func(t *testing.T) {
		id, ok := tokens.ParseIdentity(signed(t, jwtlib.MapClaims{"sub": "42"}))
		require.True(t, ok)
		require.Equal(t, "42", id.Name())
	})

	t.Run("expired tokens still parse", func(t *testing.T) {
		_, ok := tokens.ParseIdentity(signed(t, jwtlib.MapClaims{"sub": "42", "exp": time.Now().Add(-time.Hour).Unix()}))
		require.True(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := tokens.ParseIdentity("opaque-access-token")
		require.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := tokens.ParseIdentity("")
		require.False(t, ok)
	})
}
