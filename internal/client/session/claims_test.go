package session

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

const header = `{"alg":"HS256","typ":"JWT"}`

func rawToken(payload string, enc *base64.Encoding) string {
	return base64.RawURLEncoding.EncodeToString([]byte(header)) + "." +
		enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestParseClaims(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("camelCase claims", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"sub": "u-1", "email": "jane@example.com", "firstName": "Jane", "lastName": "Smith",
			"role": "teacher", "exp": exp.Unix(), "iat": exp.Add(-time.Hour).Unix(),
		})
		c, err := ParseClaims(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", c.Subject)
		assert.Equal(t, "Jane", c.FirstName)
		assert.Equal(t, "Smith", c.LastName)
		assert.Equal(t, "teacher", c.Role)
		assert.True(t, c.ExpiresAt.Equal(exp))
		assert.True(t, c.IssuedAt.Equal(exp.Add(-time.Hour)))
	})

	t.Run("id and snake_case fallbacks", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"id": "u-2", "email": "john@example.com", "first_name": "John", "last_name": "Doe",
		})
		c, err := ParseClaims(token)
		require.NoError(t, err)
		assert.Equal(t, "u-2", c.Subject)
		assert.Equal(t, "John", c.FirstName)
		assert.Equal(t, "Doe", c.LastName)
		assert.True(t, c.ExpiresAt.IsZero())
	})

	t.Run("numeric id", func(t *testing.T) {
		c, err := ParseClaims(signedToken(t, jwt.MapClaims{"id": 42, "email": "a@example.com"}))
		require.NoError(t, err)
		assert.Equal(t, "42", c.Subject)
	})

	t.Run("padded payload", func(t *testing.T) {
		c, err := ParseClaims(rawToken(`{"sub":"u-3","email":"p@example.com"}`, base64.URLEncoding))
		require.NoError(t, err)
		assert.Equal(t, "u-3", c.Subject)
	})

	t.Run("standard base64 payload", func(t *testing.T) {
		payload := `{"sub":"u-4","firstName":"J>>?","email":"s@example.com"}`
		require.True(t, strings.ContainsAny(base64.StdEncoding.EncodeToString([]byte(payload)), "+/"))

		c, err := ParseClaims(rawToken(payload, base64.StdEncoding))
		require.NoError(t, err)
		assert.Equal(t, "u-4", c.Subject)
		assert.Equal(t, "J>>?", c.FirstName)
	})

	malformed := map[string]string{
		"plain string":     "not-a-token",
		"two segments":     "abc.def",
		"four segments":    "a.b.c.d",
		"empty":            "",
		"bad base64":       base64.RawURLEncoding.EncodeToString([]byte(header)) + ".@@@.sig",
		"payload not json": rawToken("not json", base64.RawURLEncoding),
		"missing subject":  rawToken(`{"email":"x@example.com"}`, base64.RawURLEncoding),
	}
	for name, token := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ParseClaims(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestClaimsExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, Claims{}.Expired(now))
	assert.False(t, Claims{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, Claims{ExpiresAt: now}.Expired(now))
}
