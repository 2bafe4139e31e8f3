package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lucasveenman/trace/internal/domain"
	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/order"
	"github.com/lucasveenman/trace/internal/domain/search/request"
	"github.com/lucasveenman/trace/internal/domain/search/result"
	"github.com/lucasveenman/trace/internal/transport/backend"
	healthuc "github.com/lucasveenman/trace/internal/usecase/health"
)

// --- fakes ---

type fakeSearcher struct {
	last  request.Request
	page  result.Page
	count result.Counts
}

func (f *fakeSearcher) Search(_ context.Context, req *request.Request) result.Page {
	f.last = *req
	return f.page
}

func (f *fakeSearcher) Counts(_ context.Context, _ *request.Request) result.Counts {
	return f.count
}

type fakeEntities map[string]entity.Entity

func (f fakeEntities) Entity(id string) (entity.Entity, error) {
	e, ok := f[id]
	if !ok {
		return entity.Entity{}, domain.ErrEntityNotFound
	}
	return e, nil
}

type fakeBackend struct {
	path string
	opts backend.Options
	resp *http.Response
	err  error
}

func (f *fakeBackend) Call(_ context.Context, _, path string, opts backend.Options) (*http.Response, error) {
	f.path = path
	f.opts = opts
	return f.resp, f.err
}

type fakeIndex int

func (f fakeIndex) Len() int { return int(f) }

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

// --- helpers ---

func newTestServer(t *testing.T, s Searcher, e EntityLookup, b Backend) http.Handler {
	t.Helper()
	srv := NewServer(s, e, b, healthuc.New(fakeIndex(1), nil), zap.NewNop(), PageLimits{})
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func mustRecord(t *testing.T, p record.Params) record.Record {
	t.Helper()
	r, err := record.New(p)
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}

func mustEntity(t *testing.T, id, name string) entity.Entity {
	t.Helper()
	e, err := entity.New(id, name, entity.TypeCompany, true, "Consumer electronics", entity.Profile{
		Description: name + " makes phones.",
	})
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	return e
}

// --- search ---

func TestSearch_BindsParameters(t *testing.T) {
	fs := &fakeSearcher{page: result.Page{Page: 1, TotalPages: 1}}
	h := newTestServer(t, fs, fakeEntities{}, &fakeBackend{})

	rr := do(t, h, "/search?q=steel&scope=materials&role=frame&sort=recent&page=3&page_size=10")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if fs.last.Query() != "steel" {
		t.Errorf("Query() = %q", fs.last.Query())
	}
	if fs.last.Filter() != scope.Filter(scope.Material) {
		t.Errorf("Filter() = %q", fs.last.Filter())
	}
	if fs.last.Role() != "frame" {
		t.Errorf("Role() = %q", fs.last.Role())
	}
	if fs.last.Order() != order.Recent {
		t.Errorf("Order() = %q", fs.last.Order())
	}
	if fs.last.Page() != 3 || fs.last.PageSize() != 10 {
		t.Errorf("Page()/PageSize() = %d/%d", fs.last.Page(), fs.last.PageSize())
	}
}

func TestSearch_MalformedParamsFallBack(t *testing.T) {
	fs := &fakeSearcher{page: result.Page{Page: 1, TotalPages: 1}}
	h := newTestServer(t, fs, fakeEntities{}, &fakeBackend{})

	rr := do(t, h, "/search?scope=nope&sort=z-a&page=abc&page_size=1000")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if fs.last.Filter() != scope.FilterAll {
		t.Errorf("Filter() = %q, want all", fs.last.Filter())
	}
	if fs.last.Order() != order.Relevance {
		t.Errorf("Order() = %q, want relevance", fs.last.Order())
	}
	if fs.last.Page() != 1 {
		t.Errorf("Page() = %d, want 1", fs.last.Page())
	}
	if fs.last.PageSize() != request.DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", fs.last.PageSize(), request.DefaultPageSize)
	}
}

func TestSearch_ResponseBody(t *testing.T) {
	apple := mustEntity(t, "ent-apple", "Apple")
	rec := mustRecord(t, record.Params{
		ID: "prd-iphone", Title: "iPhone 15 Pro", Scope: scope.Product, Entity: &apple,
		Href:    "/products/iphone-15-pro",
		Details: record.ProductDetails{Stars: 12, Images: []string{"/img/iphone.png"}},
	})
	fs := &fakeSearcher{
		page: result.Page{
			Hits:       []result.Hit{result.New(rec, 85)},
			Total:      1,
			TotalPages: 1,
			Page:       1,
		},
		count: result.Counts{scope.FilterAll: 1, scope.Filter(scope.Product): 1},
	}
	h := newTestServer(t, fs, fakeEntities{}, &fakeBackend{})

	rr := do(t, h, "/search?q=iphone")
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || len(body.Hits) != 1 {
		t.Fatalf("total=%d hits=%d", body.Total, len(body.Hits))
	}
	hit := body.Hits[0]
	if hit.ID != "prd-iphone" || hit.Score != 85 || hit.Stars != 12 {
		t.Errorf("hit = %+v", hit)
	}
	if hit.Entity == nil || hit.Entity.Name != "Apple" {
		t.Errorf("hit.Entity = %+v", hit.Entity)
	}
	if hit.Details == nil || len(hit.Details.Images) != 1 {
		t.Errorf("hit.Details = %+v", hit.Details)
	}
	if hit.UpdatedAt != nil {
		t.Errorf("undated record must omit updated_at, got %v", hit.UpdatedAt)
	}
	if body.Counts["all"] != 1 || body.Counts["product"] != 1 {
		t.Errorf("counts = %v", body.Counts)
	}
	if body.Sort != "relevance" || body.Scope != scope.FilterAll {
		t.Errorf("sort=%q scope=%q", body.Sort, body.Scope)
	}
}

func TestSearch_ServerPageLimits(t *testing.T) {
	fs := &fakeSearcher{}
	srv := NewServer(fs, fakeEntities{}, &fakeBackend{}, healthuc.New(fakeIndex(1), nil), zap.NewNop(),
		PageLimits{Default: 12, Max: 48})
	r := chi.NewRouter()
	srv.Routes(r)

	do(t, r, "/search?page_size=60")
	if fs.last.PageSize() != 12 {
		t.Errorf("over max: PageSize() = %d, want 12", fs.last.PageSize())
	}
	do(t, r, "/search")
	if fs.last.PageSize() != 12 {
		t.Errorf("missing: PageSize() = %d, want 12", fs.last.PageSize())
	}
	do(t, r, "/search?page_size=48")
	if fs.last.PageSize() != 48 {
		t.Errorf("at max: PageSize() = %d, want 48", fs.last.PageSize())
	}
}

// --- entities ---

func TestGetEntity(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{}, fakeEntities{"ent-apple": mustEntity(t, "ent-apple", "Apple")}, &fakeBackend{})

	rr := do(t, h, "/entities/ent-apple")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body entityJSON
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Name != "Apple" || body.Description != "Apple makes phones." || !body.Verified {
		t.Errorf("body = %+v", body)
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{}, fakeEntities{}, &fakeBackend{})

	rr := do(t, h, "/entities/missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeError(t, rr).Code; got != codeEntityNotFound {
		t.Errorf("code = %q", got)
	}
}

// --- backend proxy ---

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMe_Proxies(t *testing.T) {
	fb := &fakeBackend{resp: jsonResponse(http.StatusOK, `{"id":"user-42"}`)}
	h := newTestServer(t, &fakeSearcher{}, fakeEntities{}, fb)

	rr := do(t, h, "/me")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if fb.path != "/me" || !fb.opts.AuthRequired {
		t.Errorf("path=%q authRequired=%v", fb.path, fb.opts.AuthRequired)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"id":"user-42"}` {
		t.Errorf("body = %q", got)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}

func TestOrgRepositories_Proxies(t *testing.T) {
	fb := &fakeBackend{resp: jsonResponse(http.StatusOK, `[]`)}
	h := newTestServer(t, &fakeSearcher{}, fakeEntities{}, fb)

	rr := do(t, h, "/orgs/acme%20labs/repositories")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if fb.path != "/orgs/acme%20labs/repositories" {
		t.Errorf("path = %q", fb.path)
	}
	if fb.opts.AuthRequired {
		t.Error("org repositories must allow anonymous calls")
	}
}

func TestProxy_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     errorCode
		upstream int
	}{
		{"anonymous", domain.ErrAuthRequired, http.StatusUnauthorized, codeAuthRequired, 0},
		{"not configured", domain.ErrBackendNotConfigured, http.StatusServiceUnavailable, codeBackendNotConfigured, 0},
		{"upstream failure", domain.NewBackendError(http.StatusTeapot, "I'm a teapot", "short and stout"),
			http.StatusBadGateway, codeBackendError, http.StatusTeapot},
		{"transport failure", errors.New("dial tcp: connection refused"),
			http.StatusInternalServerError, codeInternalError, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, &fakeSearcher{}, fakeEntities{}, &fakeBackend{err: tc.err})

			rr := do(t, h, "/me")
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			resp := decodeError(t, rr)
			if resp.Code != tc.code {
				t.Errorf("code = %q, want %q", resp.Code, tc.code)
			}
			if resp.UpstreamStatus != tc.upstream {
				t.Errorf("upstream_status = %d, want %d", resp.UpstreamStatus, tc.upstream)
			}
		})
	}
}

// --- health ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		index  fakeIndex
		db     healthuc.DBPinger
		status int
		want   string
	}{
		{"healthy file catalog", 3, nil, http.StatusOK, "ok"},
		{"healthy redis catalog", 3, fakePinger{}, http.StatusOK, "ok"},
		{"empty catalog", 0, nil, http.StatusServiceUnavailable, "degraded"},
		{"store down", 3, fakePinger{err: errors.New("down")}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(&fakeSearcher{}, fakeEntities{}, &fakeBackend{},
				healthuc.New(tc.index, tc.db), zap.NewNop(), PageLimits{})
			r := chi.NewRouter()
			srv.Routes(r)

			rr := do(t, r, "/health")
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			var body healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tc.want {
				t.Errorf("status = %q, want %q", body.Status, tc.want)
			}
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{}, fakeEntities{}, &fakeBackend{})
	rr := do(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}
