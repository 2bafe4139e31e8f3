package chi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	domsession "github.com/lucasveenman/trace/internal/domain/session"
	"github.com/lucasveenman/trace/internal/logger"
	"github.com/lucasveenman/trace/internal/transport/session"
)

// SessionMiddleware stores the caller's session in the request context.
// Missing or invalid session tokens leave the request anonymous.
func SessionMiddleware(v *session.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := v.FromRequest(r)
			switch {
			case err == nil:
				ctx := domsession.ContextWithSession(r.Context(), sess)
				r = r.WithContext(logger.With(ctx, zap.String("user_id", sess.UserID)))
			case !errors.Is(err, session.ErrMissingToken):
				logger.FromContext(r.Context()).Debug("session rejected", zap.Error(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProtectedPrefixesMiddleware guards private areas. Anonymous requests under
// a protected prefix are sent to signInPath (browsers) or get 401 (API
// clients); signed-in requests to signInPath are sent home.
func ProtectedPrefixesMiddleware(prefixes []string, signInPath string) func(http.Handler) http.Handler {
	clean := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			clean = append(clean, p)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, loggedIn := domsession.FromContext(r.Context())
			path := r.URL.Path

			if !loggedIn && isProtected(path, clean) {
				if acceptsHTML(r) {
					target := signInPath + "?" + url.Values{"callbackUrl": {requestHref(r)}}.Encode()
					http.Redirect(w, r, target, http.StatusFound)
					return
				}
				writeError(w, http.StatusUnauthorized, codeAuthRequired, "authentication required")
				return
			}

			if loggedIn && strings.HasPrefix(path, signInPath) {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// requestHref rebuilds the absolute URL the client asked for.
func requestHref(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
