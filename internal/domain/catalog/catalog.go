package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/lucasveenman/trace/internal/domain"
	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

// synthesizedUpdatedAt dates company records built from entities so that
// recency ordering prefers real data.
var synthesizedUpdatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Catalog is the read-only dataset behind search: every record plus the
// entity map records point into. It is built once and shared by all requests.
type Catalog struct {
	records  []record.Record
	entities map[string]*entity.Entity
	order    []string
}

// New validates the dataset and builds the unified index.
// Record ids must be unique. Every company entity without its own
// entity-scope record gets a synthesized one so it is discoverable by name.
func New(entities []entity.Entity, records []record.Record) (Catalog, error) {
	byID := make(map[string]*entity.Entity, len(entities))
	order := make([]string, 0, len(entities))
	for i := range entities {
		e := entities[i]
		if _, dup := byID[e.ID()]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate entity id %q", domain.ErrInvalidCatalog, e.ID())
		}
		byID[e.ID()] = &e
		order = append(order, e.ID())
	}

	seen := make(map[string]bool, len(records))
	hasPage := make(map[string]bool)
	index := make([]record.Record, 0, len(records)+len(entities))
	for i := range records {
		r := records[i]
		if seen[r.ID()] {
			return Catalog{}, fmt.Errorf("%w: duplicate record id %q", domain.ErrInvalidCatalog, r.ID())
		}
		seen[r.ID()] = true
		if e := r.Entity(); e != nil {
			if _, ok := byID[e.ID()]; !ok {
				return Catalog{}, fmt.Errorf("%w: record %q references unknown entity %q",
					domain.ErrInvalidCatalog, r.ID(), e.ID())
			}
			if r.Scope() == scope.Entity {
				hasPage[e.ID()] = true
			}
		}
		index = append(index, r)
	}

	for _, id := range order {
		e := byID[id]
		if e.Type() != entity.TypeCompany || hasPage[id] {
			continue
		}
		r, err := companyRecord(e)
		if err != nil {
			return Catalog{}, fmt.Errorf("%w: %w", domain.ErrInvalidCatalog, err)
		}
		if seen[r.ID()] {
			return Catalog{}, fmt.Errorf("%w: synthesized id %q collides with a record", domain.ErrInvalidCatalog, r.ID())
		}
		index = append(index, r)
	}

	return Catalog{records: index, entities: byID, order: order}, nil
}

func companyRecord(e *entity.Entity) (record.Record, error) {
	r, err := record.New(record.Params{
		ID:        "co-" + e.ID(),
		Title:     e.Name(),
		Subtitle:  e.Subtitle(),
		Scope:     scope.Entity,
		Entity:    e,
		UpdatedAt: synthesizedUpdatedAt,
		Href:      "/companies/" + Slugify(e.Name()),
		Tags:      []string{"company"},
		Details:   record.EntityDetails{Kind: entity.TypeCompany},
	})
	if err != nil {
		return record.Record{}, fmt.Errorf("synthesize company %q: %w", e.ID(), err)
	}
	return r, nil
}

// Records returns the unified index in dataset order. Callers must not modify it.
func (c *Catalog) Records() []record.Record { return c.records }

// Len returns the number of indexed records.
func (c *Catalog) Len() int { return len(c.records) }

// Entity looks up an entity by id.
func (c *Catalog) Entity(id string) (entity.Entity, error) {
	e, ok := c.entities[id]
	if !ok {
		return entity.Entity{}, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, id)
	}
	return *e, nil
}

// Entities returns all entities in dataset order.
func (c *Catalog) Entities() []entity.Entity {
	out := make([]entity.Entity, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.entities[id])
	}
	return out
}

var (
	slugDrop   = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
)

// Slugify turns a display name into a URL path segment.
func Slugify(s string) string {
	s = norm.NFKD.String(strings.ToLower(s))
	s = slugDrop.ReplaceAllString(s, "")
	return slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
}
