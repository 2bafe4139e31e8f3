package chi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/order"
	"github.com/lucasveenman/trace/internal/domain/search/request"
	"github.com/lucasveenman/trace/internal/domain/search/result"
	"github.com/lucasveenman/trace/internal/logger"
	"github.com/lucasveenman/trace/internal/transport/backend"
	healthuc "github.com/lucasveenman/trace/internal/usecase/health"
)

// Searcher runs catalog queries.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) result.Page
	Counts(ctx context.Context, req *request.Request) result.Counts
}

// EntityLookup resolves entity profiles by id.
type EntityLookup interface {
	Entity(id string) (entity.Entity, error)
}

// Backend performs calls against the backend API.
type Backend interface {
	Call(ctx context.Context, method, path string, opts backend.Options) (*http.Response, error)
}

// PageLimits bounds the page_size parameter.
type PageLimits struct {
	Default int
	Max     int
}

// Server serves the search API and proxies signed-in calls to the backend.
type Server struct {
	search        Searcher
	entities      EntityLookup
	backend       Backend
	health        *healthuc.Service
	logger        *zap.Logger
	limits        PageLimits
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	entities EntityLookup,
	be Backend,
	health *healthuc.Service,
	logger *zap.Logger,
	limits PageLimits,
) *Server {
	if limits.Max <= 0 || limits.Max > request.MaxPageSize {
		limits.Max = request.MaxPageSize
	}
	if limits.Default <= 0 || limits.Default > limits.Max {
		limits.Default = min(request.DefaultPageSize, limits.Max)
	}
	return &Server{
		search:        search,
		entities:      entities,
		backend:       be,
		health:        health,
		logger:        logger,
		limits:        limits,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.Search)
	r.Get("/entities/{id}", s.GetEntity)
	r.Get("/me", s.Me)
	r.Get("/orgs/{owner}/repositories", s.OrgRepositories)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// searchParams are the optional query parameters of GET /search.
type searchParams struct {
	Q        *string
	Scope    *string
	Role     *string
	Sort     *string
	Page     *int
	PageSize *int
}

// bindSearchParams reads the query string. Malformed values are ignored so
// a hand-edited URL still returns a page.
func bindSearchParams(q url.Values) searchParams {
	var p searchParams
	bind := func(name string, dest any) {
		_ = runtime.BindQueryParameter("form", true, false, name, q, dest)
	}
	bind("q", &p.Q)
	bind("scope", &p.Scope)
	bind("role", &p.Role)
	bind("sort", &p.Sort)
	bind("page", &p.Page)
	bind("page_size", &p.PageSize)
	return p
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	p := bindSearchParams(r.URL.Query())

	pageSize := deref(p.PageSize)
	switch {
	case pageSize <= 0:
		pageSize = s.limits.Default
	case pageSize > s.limits.Max:
		pageSize = s.limits.Default
	}

	req := request.New(
		deref(p.Q),
		scope.ParseFilter(deref(p.Scope)),
		deref(p.Role),
		order.Parse(deref(p.Sort)),
		deref(p.Page),
		pageSize,
	)

	page := s.search.Search(r.Context(), &req)
	counts := s.search.Counts(r.Context(), &req)

	writeJSON(w, http.StatusOK, searchToJSON(&req, &page, counts))
}

// GetEntity handles GET /entities/{id}.
func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request) {
	e, err := s.entities.Entity(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entityToJSON(&e))
}

// Me handles GET /me. Anonymous callers get 401 without a backend round trip.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	s.proxy(w, r, "/me", true)
}

// OrgRepositories handles GET /orgs/{owner}/repositories.
func (s *Server) OrgRepositories(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(chi.URLParam(r, "owner"))
	if owner == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "owner is required")
		return
	}
	s.proxy(w, r, "/orgs/"+url.PathEscape(owner)+"/repositories", false)
}

// proxy forwards a GET to the backend and streams the JSON body back.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request, path string, authRequired bool) {
	resp, err := s.backend.Call(r.Context(), http.MethodGet, path, backend.Options{AuthRequired: authRequired})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.FromContext(r.Context()).Warn("proxy copy failed", zap.String("path", path), zap.Error(err))
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}
