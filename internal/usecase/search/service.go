package search

import (
	"context"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/order"
	"github.com/lucasveenman/trace/internal/domain/search/request"
	"github.com/lucasveenman/trace/internal/domain/search/result"
	"github.com/lucasveenman/trace/internal/metrics"
)

// Service ranks, filters and paginates records of an in-memory index.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	index Index
	lang  language.Tag
}

// New creates a search service.
func New(index Index) *Service {
	return &Service{index: index, lang: language.Und}
}

// WithLanguage sets the collation language used by alphabetical ordering.
func (s *Service) WithLanguage(tag language.Tag) *Service {
	s.lang = tag
	return s
}

// Search runs a query. It never fails: every request.Request is valid,
// the zero value included.
//
// Scope and role filters reduce the set first; scoring follows. With a
// non-empty query, records scoring 0 are dropped. With an empty query every
// in-scope record is kept with score 0 in dataset order.
func (s *Service) Search(_ context.Context, req *request.Request) result.Page {
	r := renormalize(req)
	hits := s.match(&r)
	page := paginate(hits, r.Page(), r.PageSize())

	metrics.SearchQueriesTotal.WithLabelValues(string(r.Filter()), string(r.Order())).Inc()
	metrics.SearchMatches.WithLabelValues(string(r.Filter())).Observe(float64(page.Total))

	return page
}

// match filters, scores and sorts the index for req.
func (s *Service) match(req *request.Request) []result.Hit {
	raw := req.Query()
	q, fold := normalize(raw), normalize
	if raw != "" && q == "" {
		// Only combining marks: compare with marks kept.
		q, fold = decompose(raw), decompose
	}

	var hits []result.Hit
	for _, r := range s.index.Records() {
		if !req.Filter().Matches(r.Scope(), r.Role()) {
			continue
		}
		if role := req.Role(); role != "" && r.Role() != "" && r.Role() != role {
			continue
		}
		sc := score(q, &r, fold)
		if raw != "" && sc == 0 {
			continue
		}
		hits = append(hits, result.New(r, sc))
	}

	s.sortHits(hits, req.Order())
	return hits
}

// renormalize runs req through request.New so hand-built values get defaults.
func renormalize(req *request.Request) request.Request {
	return request.New(req.Query(), req.Filter(), req.Role(), req.Order(), req.Page(), req.PageSize())
}

// sortHits orders hits in place. All orderings are stable so ties keep
// the filtered set's order.
func (s *Service) sortHits(hits []result.Hit, o order.Order) {
	switch o {
	case order.Recent:
		slices.SortStableFunc(hits, func(a, b result.Hit) int {
			return compareInt64(updatedMillis(b), updatedMillis(a))
		})
	case order.Alphabetical:
		// Collators keep internal buffers; one per call keeps Search concurrency-safe.
		col := collate.New(s.lang)
		slices.SortStableFunc(hits, func(a, b result.Hit) int {
			ra, rb := a.Record(), b.Record()
			return col.CompareString(ra.SortTitle(), rb.SortTitle())
		})
	default:
		slices.SortStableFunc(hits, func(a, b result.Hit) int {
			return b.Score() - a.Score()
		})
	}
}

// updatedMillis returns the modification time in ms; records without one count as the epoch.
func updatedMillis(h result.Hit) int64 {
	r := h.Record()
	t := r.UpdatedAt()
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// paginate clamps the page into [1, totalPages] and slices it out.
func paginate(hits []result.Hit, page, pageSize int) result.Page {
	if pageSize < 1 {
		pageSize = request.DefaultPageSize
	}
	total := len(hits)
	totalPages := max(1, (total+pageSize-1)/pageSize)
	page = min(max(page, 1), totalPages)

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return result.Page{
		Hits:       hits[start:end:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		All:        hits,
	}
}

// CountByScope counts records per scope, plus the "all" total and the
// derived components bucket. The components predicate is the one the query
// path uses, so counts and filtered result sets agree.
func CountByScope(records []record.Record) result.Counts {
	counts := make(result.Counts, len(scope.Filters()))
	for _, f := range scope.Filters() {
		counts[f] = 0
	}
	for i := range records {
		r := &records[i]
		for _, f := range scope.Filters() {
			if f.Matches(r.Scope(), r.Role()) {
				counts[f]++
			}
		}
	}
	return counts
}

// Counts runs the query across all scopes and returns per-scope badge counts
// for it, keeping the request's query and role.
func (s *Service) Counts(_ context.Context, req *request.Request) result.Counts {
	all := req.WithFilter(scope.FilterAll)
	return CountByScope(result.Records(s.match(&all)))
}
