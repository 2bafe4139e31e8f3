package chi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domsession "github.com/lucasveenman/trace/internal/domain/session"
	"github.com/lucasveenman/trace/internal/transport/session"
)

const testSessionSecret = "session-secret-for-tests"

var testPrefixes = []string{"/settings", "/account", "/me", "/org/new", "/repo/new"}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func signSession(t *testing.T, sub string) string {
	t.Helper()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		Handle: "lucas",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSessionSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func withSession(r *http.Request) *http.Request {
	return r.WithContext(domsession.ContextWithSession(r.Context(), domsession.Session{UserID: "user-42"}))
}

func TestSessionMiddleware(t *testing.T) {
	v := session.NewVerifier(testSessionSecret, "")

	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{"valid cookie", signSession(t, "user-42"), "user-42"},
		{"invalid token", "not-a-jwt", ""},
		{"no cookie", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got domsession.Session
			h := SessionMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = domsession.FromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/search", http.NoBody)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: tc.cookie})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if got.UserID != tc.want {
				t.Errorf("UserID = %q, want %q", got.UserID, tc.want)
			}
		})
	}
}

func TestProtected_AnonymousBrowserRedirects(t *testing.T) {
	h := ProtectedPrefixesMiddleware(testPrefixes, "/sign-in")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "http://trace.test/settings/profile?tab=keys", http.NoBody)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if loc.Path != "/sign-in" {
		t.Errorf("Location path = %q", loc.Path)
	}
	if got := loc.Query().Get("callbackUrl"); got != "http://trace.test/settings/profile?tab=keys" {
		t.Errorf("callbackUrl = %q", got)
	}
}

func TestProtected_AnonymousAPIClientGets401(t *testing.T) {
	h := ProtectedPrefixesMiddleware(testPrefixes, "/sign-in")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if got := decodeError(t, rr).Code; got != codeAuthRequired {
		t.Errorf("code = %q", got)
	}
}

func TestProtected_PrefixMatching(t *testing.T) {
	h := ProtectedPrefixesMiddleware(testPrefixes, "/sign-in")(okHandler())

	tests := []struct {
		path string
		want int
	}{
		{"/settings", http.StatusUnauthorized},
		{"/settings/", http.StatusUnauthorized},
		{"/org/new/step-2", http.StatusUnauthorized},
		{"/settingsx", http.StatusOK},
		{"/members", http.StatusOK},
		{"/org/newest", http.StatusOK},
		{"/search", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestProtected_SignedInPassesThrough(t *testing.T) {
	h := ProtectedPrefixesMiddleware(testPrefixes, "/sign-in")(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/account", http.NoBody)))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestProtected_SignedInLeavesSignIn(t *testing.T) {
	h := ProtectedPrefixesMiddleware(testPrefixes, "/sign-in")(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withSession(httptest.NewRequest(http.MethodGet, "/sign-in?callbackUrl=%2F", http.NoBody)))
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	anon := httptest.NewRecorder()
	h.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/sign-in", http.NoBody))
	if anon.Code != http.StatusOK {
		t.Errorf("anonymous sign-in status = %d, want 200", anon.Code)
	}
}
