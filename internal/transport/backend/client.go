package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lucasveenman/trace/internal/domain"
	"github.com/lucasveenman/trace/internal/metrics"
)

// maxErrorBody caps how much of a failed response body ends up in errors.
const maxErrorBody = 4 << 10

// TokenSource issues a service token for the current request.
type TokenSource interface {
	Issue(ctx context.Context) (string, bool)
}

// Client calls the backend API on behalf of the signed-in user, or
// anonymously when no token can be issued.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// Config holds the backend client settings.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *zap.Logger
}

// NewClient creates a backend client. An empty BaseURL is allowed; every
// call then fails with domain.ErrBackendNotConfigured.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		// No client-side timeout; the caller's context bounds the call.
		hc = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		tokens:  cfg.Tokens,
		logger:  log,
	}
}

// Options control a single call.
type Options struct {
	// AuthRequired fails the call with domain.ErrAuthRequired instead of
	// going anonymous when no token is issued.
	AuthRequired bool
	Header       http.Header
	Body         io.Reader
}

// Call performs one request. On success the caller owns resp.Body.
// Non-2xx responses are consumed and returned as *domain.BackendError.
// There are no retries.
func (c *Client) Call(ctx context.Context, method, path string, opts Options) (*http.Response, error) {
	if c.baseURL == "" {
		metrics.BackendErrorsTotal.WithLabelValues("not_configured").Inc()
		return nil, domain.ErrBackendNotConfigured
	}

	var token string
	if c.tokens != nil {
		token, _ = c.tokens.Issue(ctx)
	}
	if token == "" && opts.AuthRequired {
		metrics.BackendErrorsTotal.WithLabelValues("auth_required").Inc()
		return nil, fmt.Errorf("%s %s: %w", method, path, domain.ErrAuthRequired)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "error").Inc()
		metrics.BackendErrorsTotal.WithLabelValues("transport").Inc()
		return nil, fmt.Errorf("backend request %s %s: %w: %w", method, path, domain.ErrBackend, err)
	}
	metrics.BackendRequestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close() //nolint:errcheck // body fully read
		metrics.BackendErrorsTotal.WithLabelValues("status").Inc()

		body := readErrorBody(resp.Body)
		c.logger.Debug("backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, domain.NewBackendError(resp.StatusCode, statusText(resp), body)
	}
	return resp, nil
}

// GetJSON performs a GET and decodes the JSON response into T.
func GetJSON[T any](ctx context.Context, c *Client, path string, opts Options) (T, error) {
	var out T
	resp, err := c.Call(ctx, http.MethodGet, path, opts)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode backend response %s: %w: %w", path, domain.ErrBackend, err)
	}
	return out, nil
}

// readErrorBody returns the response text, or "" when it cannot be read.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return string(b)
}

// statusText returns the reason phrase without the code ("Not Found").
func statusText(resp *http.Response) string {
	if s := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); s != "" && s != resp.Status {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
