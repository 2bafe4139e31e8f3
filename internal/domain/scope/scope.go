package scope

import "strings"

// Scope is the logical collection a record belongs to.
type Scope string

// Scope constants.
const (
	Standard Scope = "standard"
	Material Scope = "material"
	Product  Scope = "product"
	Project  Scope = "project"
	Process  Scope = "process"
	// Entity covers organisations, companies and users.
	Entity Scope = "entity"
)

// ComponentRole reclassifies a product into the components view.
const ComponentRole = "component"

var scopes = []Scope{Standard, Material, Product, Project, Process, Entity}

// All returns every scope in display order.
func All() []Scope {
	out := make([]Scope, len(scopes))
	copy(out, scopes)
	return out
}

// IsValid checks if the scope is one of the supported values.
func (s Scope) IsValid() bool {
	switch s {
	case Standard, Material, Product, Project, Process, Entity:
		return true
	}
	return false
}

// Filter selects records by scope. Besides every Scope it has two virtual
// values: FilterAll and FilterComponents.
type Filter string

// Virtual filters.
const (
	FilterAll        Filter = "all"
	FilterComponents Filter = "components"
)

// plural and legacy names accepted from URLs.
var aliases = map[string]Filter{
	"standards":     Filter(Standard),
	"materials":     Filter(Material),
	"products":      Filter(Product),
	"projects":      Filter(Project),
	"processes":     Filter(Process),
	"entities":      Filter(Entity),
	"companies":     Filter(Entity),
	"organisations": Filter(Entity),
	"organizations": Filter(Entity),
	"component":     FilterComponents,
}

// ParseFilter maps user input to a Filter. Unknown values fall back to FilterAll.
func ParseFilter(raw string) Filter {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "", v == string(FilterAll):
		return FilterAll
	case v == string(FilterComponents):
		return FilterComponents
	case Scope(v).IsValid():
		return Filter(v)
	}
	if f, ok := aliases[v]; ok {
		return f
	}
	return FilterAll
}

// Of returns the filter selecting exactly one scope.
func Of(s Scope) Filter { return Filter(s) }

// Filters returns every filter a count is reported for: all, each scope and components.
func Filters() []Filter {
	out := make([]Filter, 0, len(scopes)+2)
	out = append(out, FilterAll)
	for _, s := range scopes {
		out = append(out, Filter(s))
	}
	return append(out, FilterComponents)
}

// Matches reports whether a record with the given scope and role passes the filter.
// The components bucket is derived here and nowhere else.
func (f Filter) Matches(s Scope, role string) bool {
	switch f {
	case FilterAll:
		return true
	case FilterComponents:
		return IsComponent(s, role)
	default:
		return Scope(f) == s
	}
}

// IsComponent reports whether a record belongs to the derived components bucket.
func IsComponent(s Scope, role string) bool {
	return s == Product && role == ComponentRole
}
