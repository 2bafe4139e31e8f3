package result

import (
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

// Hit is a scored search match.
type Hit struct {
	record record.Record
	score  int
}

// New creates a search hit.
func New(r record.Record, score int) Hit {
	return Hit{record: r, score: score}
}

// Record returns the matched record.
func (h *Hit) Record() record.Record { return h.record }

// Score returns the relevance score (0 for browsing without a query).
func (h *Hit) Score() int { return h.score }

// Page is one page of ranked results plus the full ranked set.
type Page struct {
	// Hits is the current page.
	Hits []Hit
	// Total is the number of matches across all pages.
	Total int
	// TotalPages is at least 1, even for an empty result.
	TotalPages int
	// Page is the 1-based page actually served after clamping.
	Page int
	// All holds every match in ranked order, for aggregate counts.
	All []Hit
}

// Records returns the records of the hits, in order.
func Records(hits []Hit) []record.Record {
	out := make([]record.Record, len(hits))
	for i := range hits {
		out[i] = hits[i].record
	}
	return out
}

// Counts holds the number of matches per scope filter.
type Counts map[scope.Filter]int

// Get returns the count for a filter (0 when absent).
func (c Counts) Get(f scope.Filter) int { return c[f] }
