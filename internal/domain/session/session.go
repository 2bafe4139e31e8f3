package session

import "context"

type sessionKey struct{}

// Session is the authenticated user of the current request.
type Session struct {
	UserID string
	// Handle is the public username, empty when the user has none.
	Handle string
}

// Authenticated reports whether the session identifies a user.
func (s Session) Authenticated() bool { return s.UserID != "" }

// ContextWithSession stores the session in the context.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext extracts the session from the context.
// Returns false for anonymous requests.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || !s.Authenticated() {
		return Session{}, false
	}
	return s, true
}
