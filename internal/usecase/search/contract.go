package search

import "github.com/lucasveenman/trace/internal/domain/record"

// Index is the read-only record set searched by the service.
// Implementations must return the same slice for the lifetime of a call.
type Index interface {
	Records() []record.Record
}
