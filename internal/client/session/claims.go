package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned by ParseClaims for values that are not a
// decodable bearer token.
var ErrMalformedToken = errors.New("malformed token")

// Claims are the identity fields carried in a bearer token payload.
type Claims struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token has expired at now. Tokens without an
// expiry never expire locally.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

var (
	unverifiedParser = jwt.NewParser(jwt.WithPaddingAllowed())

	// Standard base64 differs from base64url only in these two characters.
	toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")
)

// ParseClaims decodes the payload of token without verifying its signature.
// Segments may use the standard or URL-safe base64 alphabet, padded or not.
// Both sub/id and camelCase/snake_case name fields are accepted.
func ParseClaims(token string) (Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return Claims{}, fmt.Errorf("%w: expected three segments", ErrMalformedToken)
	}
	token = toURLAlphabet.Replace(segments[0]) + "." + toURLAlphabet.Replace(segments[1]) + "." + segments[2]
	parsed, _, err := unverifiedParser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	raw, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: unexpected claims type", ErrMalformedToken)
	}

	c := Claims{
		Subject:   firstString(raw, "sub", "id"),
		Email:     firstString(raw, "email"),
		FirstName: firstString(raw, "firstName", "first_name"),
		LastName:  firstString(raw, "lastName", "last_name"),
		Role:      firstString(raw, "role"),
	}
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := raw.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}

func firstString(m jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
