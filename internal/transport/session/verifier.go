package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	domsession "github.com/lucasveenman/trace/internal/domain/session"
)

// DefaultCookieName is the session cookie set by the identity provider.
const DefaultCookieName = "trace.session-token"

// Verification errors.
var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
	ErrNoSubject    = errors.New("session token has no subject")
	ErrNoSecret     = errors.New("session secret not configured")
)

// Claims is the user session payload. The identity provider stores the
// user id in "userId" and usually mirrors it in "sub"; Handle is optional.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Handle string `json:"handle,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) userID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Verifier validates HS256 session tokens.
type Verifier struct {
	secret     []byte
	cookieName string
	parser     *jwt.Parser
}

// NewVerifier creates a Verifier. With an empty secret every request is anonymous.
func NewVerifier(secret, cookieName string) *Verifier {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Verifier{
		secret:     []byte(secret),
		cookieName: cookieName,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify validates a session token and returns its session.
func (v *Verifier) Verify(tokenString string) (domsession.Session, error) {
	if len(v.secret) == 0 {
		return domsession.Session{}, ErrNoSecret
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return domsession.Session{}, ErrMissingToken
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return domsession.Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	uid := claims.userID()
	if uid == "" {
		return domsession.Session{}, ErrNoSubject
	}
	return domsession.Session{UserID: uid, Handle: claims.Handle}, nil
}

// FromRequest extracts and verifies the session from the session cookie,
// falling back to an Authorization: Bearer header.
func (v *Verifier) FromRequest(r *http.Request) (domsession.Session, error) {
	if c, err := r.Cookie(v.cookieName); err == nil && c.Value != "" {
		return v.Verify(c.Value)
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return v.Verify(h[7:])
	}
	return domsession.Session{}, ErrMissingToken
}

// ContextReader reads the session stored in the request context by the
// session middleware.
type ContextReader struct{}

// Current returns the session of the request, false when anonymous.
func (ContextReader) Current(ctx context.Context) (domsession.Session, bool) {
	return domsession.FromContext(ctx)
}
