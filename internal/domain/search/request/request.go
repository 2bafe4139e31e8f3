package request

import (
	"strings"

	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/order"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum query length in bytes; longer input is cut.
	MaxQueryLength  = 512
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// Request is a normalized search query. Every input maps to a valid
// request; there is no error path because values come from editable URLs.
type Request struct {
	query    string
	filter   scope.Filter
	role     string
	ordering order.Order
	page     int
	pageSize int
}

// New normalizes search parameters.
// Defaults: filter=all, order=relevance, page=1, pageSize=24.
// Out-of-range page sizes fall back to the default rather than clamping.
func New(query string, f scope.Filter, role string, o order.Order, page, pageSize int) Request {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		query = truncate(query, MaxQueryLength)
	}
	if f == "" || !(f == scope.FilterAll || f == scope.FilterComponents || scope.Scope(f).IsValid()) {
		f = scope.FilterAll
	}
	if !o.IsValid() {
		o = order.Relevance
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return Request{
		query:    query,
		filter:   f,
		role:     strings.TrimSpace(role),
		ordering: o,
		page:     page,
		pageSize: pageSize,
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Query returns the trimmed free-text query (may be empty).
func (r *Request) Query() string { return r.query }

// Filter returns the scope filter.
func (r *Request) Filter() scope.Filter { return r.filter }

// Role returns the role filter, empty when unset.
func (r *Request) Role() string { return r.role }

// Order returns the result ordering.
func (r *Request) Order() order.Order { return r.ordering }

// Page returns the requested 1-based page before clamping to the result size.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of hits per page.
func (r *Request) PageSize() int { return r.pageSize }

// WithFilter returns a copy of the request with another scope filter.
func (r Request) WithFilter(f scope.Filter) Request {
	return New(r.query, f, r.role, r.ordering, r.page, r.pageSize)
}
