package order

import "strings"

// Order is the result ordering.
type Order string

// Order constants.
const (
	// Relevance sorts by descending score.
	Relevance Order = "relevance"
	// Recent sorts by descending modification time; undated records sort last.
	Recent Order = "recent"
	// Alphabetical sorts by title using locale-aware collation.
	Alphabetical Order = "a-z"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool {
	return o == Relevance || o == Recent || o == Alphabetical
}

// Parse maps user input to an Order. Unknown values fall back to Relevance.
func Parse(raw string) Order {
	o := Order(strings.ToLower(strings.TrimSpace(raw)))
	if !o.IsValid() {
		return Relevance
	}
	return o
}
