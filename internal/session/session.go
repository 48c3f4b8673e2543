// Package session reads the identity issued by the external identity provider.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/api-debugger/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the identity provider sets after sign-in.
const CookieName = "session"

// Identity is what the dashboard needs to know about the visitor.
type Identity struct {
	SignedIn bool   `json:"signed_in"`
	Subject  string `json:"subject,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// DisplayName returns the name to greet the user with.
func (i Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	default:
		return "there"
	}
}

// LocalIdentity is used when authentication is disabled.
var LocalIdentity = Identity{
	SignedIn: true,
	Subject:  "local",
	Name:     "Local Developer",
	Email:    "dev@localhost",
}

type claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 session tokens.
type Verifier struct {
	secret   []byte
	disabled bool
}

// NewVerifier creates a Verifier. When disabled is true every request is
// signed in as LocalIdentity.
func NewVerifier(secret string, disabled bool) *Verifier {
	return &Verifier{secret: []byte(secret), disabled: disabled}
}

// Parse validates tokenStr and returns the identity it carries.
func (v *Verifier) Parse(tokenStr string) (Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenStr, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthorized
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || c.Subject == "" {
		return Identity{}, domain.ErrUnauthorized
	}

	return Identity{
		SignedIn: true,
		Subject:  c.Subject,
		Name:     c.Name,
		Email:    c.Email,
	}, nil
}

// FromRequest reads the token from the Authorization header, falling back to
// the session cookie. Any failure yields a signed-out identity.
func (v *Verifier) FromRequest(r *http.Request) Identity {
	if v.disabled {
		return LocalIdentity
	}

	token := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if cookie, err := r.Cookie(CookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return Identity{}
	}

	id, err := v.Parse(token)
	if err != nil {
		return Identity{}
	}
	return id
}

// Issue signs a token for id. Used by tests and local tooling; production
// tokens come from the identity provider.
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}
