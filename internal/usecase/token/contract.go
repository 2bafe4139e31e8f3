package token

import (
	"context"

	"github.com/lucasveenman/trace/internal/domain/session"
)

// SessionReader resolves the signed-in user for a request.
type SessionReader interface {
	Current(ctx context.Context) (session.Session, bool)
}
