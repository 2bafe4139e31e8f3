package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/lucasveenman/trace/internal/logger"
	"github.com/lucasveenman/trace/internal/metrics"
)

// Defaults for issued tokens.
const (
	DefaultIssuer   = "trace-nextjs"
	DefaultAudience = "trace-api"
	DefaultTTL      = 5 * time.Minute
)

// Config configures the issuer. Keys is the raw JSON key map.
type Config struct {
	Keys      string
	ActiveKID string
	Issuer    string
	Audience  string
	TTL       time.Duration
	// SessionSecret is the user session signing secret. A key ring that
	// reuses it is rejected.
	SessionSecret string
}

// Issuer mints short-lived HS256 service tokens on behalf of the signed-in user.
type Issuer struct {
	sessions SessionReader
	ring     KeyRing
	enabled  bool
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an Issuer. A missing or broken key ring does not fail:
// signing stays disabled for the process lifetime and every call to Issue
// behaves as anonymous. The reason is logged once at WARN.
func NewIssuer(cfg Config, sessions SessionReader, log *zap.Logger, opts ...Option) *Issuer {
	i := &Issuer{
		sessions: sessions,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
	if i.issuer == "" {
		i.issuer = DefaultIssuer
	}
	if i.audience == "" {
		i.audience = DefaultAudience
	}
	if i.ttl <= 0 {
		i.ttl = DefaultTTL
	}
	for _, o := range opts {
		o(i)
	}

	ring, err := ParseKeyRing(cfg.Keys, cfg.ActiveKID)
	if err == nil && cfg.SessionSecret != "" && ring.Contains(cfg.SessionSecret) {
		err = ErrSharedSecret
	}
	if err != nil {
		log.Warn("backend token signing disabled", zap.Error(err))
		return i
	}
	i.ring = ring
	i.enabled = true
	log.Info("backend token signing enabled", zap.String("kid", ring.ActiveKID()))
	return i
}

// Enabled reports whether the issuer can sign tokens.
func (i *Issuer) Enabled() bool { return i.enabled }

// Issue returns a token for the current session. ok is false when there is
// no signed-in user or signing is disabled; the caller then goes anonymous.
func (i *Issuer) Issue(ctx context.Context) (string, bool) {
	sess, ok := i.sessions.Current(ctx)
	if !ok || !sess.Authenticated() {
		metrics.ServiceTokensTotal.WithLabelValues("anonymous").Inc()
		return "", false
	}
	if !i.enabled {
		metrics.ServiceTokensTotal.WithLabelValues("disabled").Inc()
		return "", false
	}

	now := i.now().Unix()
	claims := &Claims{
		Subject:   sess.UserID,
		Issuer:    i.issuer,
		Audience:  i.audience,
		IssuedAt:  now,
		ExpiresAt: now + int64(i.ttl/time.Second),
		Version:   ClaimsVersion,
	}
	if sess.Handle != "" {
		h := sess.Handle
		claims.Handle = &h
	}

	kid := i.ring.ActiveKID()
	secret, _ := i.ring.Secret(kid)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = kid

	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		logger.FromContext(ctx).Error("sign backend token", zap.Error(err))
		metrics.ServiceTokensTotal.WithLabelValues("error").Inc()
		return "", false
	}
	metrics.ServiceTokensTotal.WithLabelValues("issued").Inc()
	return signed, true
}
