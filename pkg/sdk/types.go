package trace

import "time"

// Query is a catalog search. Zero values select the defaults: every
// scope, relevance order, first page, 24 hits per page. Unknown scope
// and sort values fall back to the defaults.
type Query struct {
	Text     string
	Scope    string // standards, materials, products, components, ...
	Role     string
	Sort     string // relevance, recent, a-z
	Page     int
	PageSize int
}

// Hit is one ranked record.
type Hit struct {
	ID       string
	Title    string
	Subtitle string
	Scope    string
	Role     string
	Href     string
	Tags     []string
	// UpdatedAt is zero when the record has no modification date.
	UpdatedAt time.Time
	Score     int
	Stars     int
	// EntityID and EntityName are empty for records without an owner.
	EntityID   string
	EntityName string
}

// Results is one page of a search plus per-scope counts for the same query.
type Results struct {
	Hits       []Hit
	Total      int
	TotalPages int
	Page       int
	// Counts maps every scope filter (including "all" and "components")
	// to the number of records the query matches in it.
	Counts map[string]int
}

// Entity is an organisation, company or user profile.
type Entity struct {
	ID          string
	Name        string
	Type        string
	Verified    bool
	Subtitle    string
	Description string
	LogoURL     string
}
