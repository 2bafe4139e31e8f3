package record

import (
	"fmt"
	"time"

	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

// Record is a single searchable item (immutable value object).
// The owning entity is a weak reference resolved from the catalog's entity map.
type Record struct {
	id        string
	title     string
	subtitle  string
	scope     scope.Scope
	entity    *entity.Entity
	role      string
	updatedAt time.Time
	href      string
	tags      []string
	details   Details
}

// Params carries the fields of a new Record.
type Params struct {
	ID       string
	Title    string
	Subtitle string
	Scope    scope.Scope
	Entity   *entity.Entity
	Role     string
	// UpdatedAt is the zero time when the record has no modification date.
	UpdatedAt time.Time
	Href      string
	Tags      []string
	// Details must belong to Scope when set.
	Details Details
}

// New validates and creates a Record.
func New(p Params) (Record, error) {
	if p.ID == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if p.Title == "" {
		return Record{}, fmt.Errorf("record %q: title is required", p.ID)
	}
	if !p.Scope.IsValid() {
		return Record{}, fmt.Errorf("record %q: invalid scope %q", p.ID, p.Scope)
	}
	if p.Details != nil && p.Details.Scope() != p.Scope {
		return Record{}, fmt.Errorf("record %q: %s details on a %s record", p.ID, p.Details.Scope(), p.Scope)
	}

	var tags []string
	if len(p.Tags) > 0 {
		tags = make([]string, len(p.Tags))
		copy(tags, p.Tags)
	}

	return Record{
		id:        p.ID,
		title:     p.Title,
		subtitle:  p.Subtitle,
		scope:     p.Scope,
		entity:    p.Entity,
		role:      p.Role,
		updatedAt: p.UpdatedAt,
		href:      p.Href,
		tags:      tags,
		details:   p.Details,
	}, nil
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Title returns the display name, the primary match target.
func (r *Record) Title() string { return r.title }

// SortTitle returns the key used by alphabetical ordering.
func (r *Record) SortTitle() string { return r.title }

// Subtitle returns the secondary match target.
func (r *Record) Subtitle() string { return r.subtitle }

// Scope returns the logical collection of the record.
func (r *Record) Scope() scope.Scope { return r.scope }

// Entity returns the owning entity, nil when the record has none.
func (r *Record) Entity() *entity.Entity { return r.entity }

// Role returns the sub-classification, empty when unset.
func (r *Record) Role() string { return r.role }

// UpdatedAt returns the last modification time (zero when unknown).
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// Href returns the canonical page path.
func (r *Record) Href() string { return r.href }

// Tags returns free-form labels.
func (r *Record) Tags() []string { return r.tags }

// Details returns the scope-specific payload, nil when the record has none.
func (r *Record) Details() Details { return r.details }

// IsComponent reports whether the record belongs to the derived components bucket.
func (r *Record) IsComponent() bool { return scope.IsComponent(r.scope, r.role) }
