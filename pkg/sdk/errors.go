package trace

import "github.com/lucasveenman/trace/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrEntityNotFound = domain.ErrEntityNotFound
	ErrInvalidCatalog = domain.ErrInvalidCatalog
)
