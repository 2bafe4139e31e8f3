package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasveenman/trace/internal/domain"
	domcat "github.com/lucasveenman/trace/internal/domain/catalog"
	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

// Document is the serialized catalog: a YAML file on disk or a JSON
// snapshot in the store.
type Document struct {
	Entities []EntityRow `yaml:"entities" json:"entities"`
	Records  []RecordRow `yaml:"records" json:"records"`
}

// EntityRow is the serialized form of an entity.
type EntityRow struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Type        string         `yaml:"type" json:"type"`
	Verified    bool           `yaml:"verified,omitempty" json:"verified,omitempty"`
	Subtitle    string         `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	LogoURL     string         `yaml:"logo_url,omitempty" json:"logo_url,omitempty"`
	Meta        entity.Meta    `yaml:"meta,omitempty" json:"meta,omitempty"`
	Socials     entity.Socials `yaml:"socials,omitempty" json:"socials,omitempty"`
	Stats       entity.Stats   `yaml:"stats,omitempty" json:"stats,omitempty"`
}

// RecordRow is the serialized form of a record. Scope-specific fields
// are flattened; fields that do not belong to the scope are ignored.
type RecordRow struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Scope    string `yaml:"scope" json:"scope"`
	// Entity is the id of the owning entity.
	Entity string `yaml:"entity,omitempty" json:"entity,omitempty"`
	Role   string `yaml:"role,omitempty" json:"role,omitempty"`
	// UpdatedAt is RFC 3339 or a plain date (2006-01-02).
	UpdatedAt string   `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
	Href      string   `yaml:"href,omitempty" json:"href,omitempty"`
	Tags      []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	Stars  int           `yaml:"stars,omitempty" json:"stars,omitempty"`
	Code   string        `yaml:"code,omitempty" json:"code,omitempty"`
	Grade  string        `yaml:"grade,omitempty" json:"grade,omitempty"`
	Stage  string        `yaml:"stage,omitempty" json:"stage,omitempty"`
	Images []string      `yaml:"images,omitempty" json:"images,omitempty"`
	Specs  []record.Spec `yaml:"specs,omitempty" json:"specs,omitempty"`
	Badges []string      `yaml:"badges,omitempty" json:"badges,omitempty"`
}

// Build validates the document and builds the search catalog.
func Build(doc *Document) (domcat.Catalog, error) {
	entities := make([]entity.Entity, 0, len(doc.Entities))
	byID := make(map[string]*entity.Entity, len(doc.Entities))
	for i := range doc.Entities {
		e, err := entityFromRow(&doc.Entities[i])
		if err != nil {
			return domcat.Catalog{}, fmt.Errorf("%w: entity %d: %w", domain.ErrInvalidCatalog, i, err)
		}
		entities = append(entities, e)
		byID[e.ID()] = &entities[len(entities)-1]
	}

	records := make([]record.Record, 0, len(doc.Records))
	for i := range doc.Records {
		r, err := recordFromRow(&doc.Records[i], byID)
		if err != nil {
			return domcat.Catalog{}, fmt.Errorf("%w: record %d: %w", domain.ErrInvalidCatalog, i, err)
		}
		records = append(records, r)
	}

	c, err := domcat.New(entities, records)
	if err != nil {
		return domcat.Catalog{}, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}

func entityFromRow(row *EntityRow) (entity.Entity, error) {
	e, err := entity.New(row.ID, row.Name, entity.Type(row.Type), row.Verified, row.Subtitle, entity.Profile{
		Description: row.Description,
		LogoURL:     row.LogoURL,
		Meta:        row.Meta,
		Socials:     row.Socials,
		Stats:       row.Stats,
	})
	if err != nil {
		return entity.Entity{}, fmt.Errorf("invalid entity: %w", err)
	}
	return e, nil
}

func recordFromRow(row *RecordRow, entities map[string]*entity.Entity) (record.Record, error) {
	sc := scope.Scope(strings.ToLower(strings.TrimSpace(row.Scope)))

	var owner *entity.Entity
	if row.Entity != "" {
		e, ok := entities[row.Entity]
		if !ok {
			return record.Record{}, fmt.Errorf("record %q: unknown entity %q", row.ID, row.Entity)
		}
		owner = e
	}

	updatedAt, err := parseDate(row.UpdatedAt)
	if err != nil {
		return record.Record{}, fmt.Errorf("record %q: %w", row.ID, err)
	}

	r, err := record.New(record.Params{
		ID:        row.ID,
		Title:     row.Title,
		Subtitle:  row.Subtitle,
		Scope:     sc,
		Entity:    owner,
		Role:      strings.TrimSpace(row.Role),
		UpdatedAt: updatedAt,
		Href:      row.Href,
		Tags:      row.Tags,
		Details:   detailsFromRow(row, sc, owner),
	})
	if err != nil {
		return record.Record{}, fmt.Errorf("invalid record: %w", err)
	}
	return r, nil
}

// detailsFromRow returns nil for an unknown scope; record.New rejects it.
func detailsFromRow(row *RecordRow, sc scope.Scope, owner *entity.Entity) record.Details {
	switch sc {
	case scope.Standard:
		return record.StandardDetails{Code: row.Code, Stars: row.Stars}
	case scope.Material:
		return record.MaterialDetails{Grade: row.Grade, Stars: row.Stars}
	case scope.Product:
		return record.ProductDetails{Stars: row.Stars, Images: row.Images, Specs: row.Specs, Badges: row.Badges}
	case scope.Project:
		return record.ProjectDetails{Stage: row.Stage, Stars: row.Stars, Images: row.Images}
	case scope.Process:
		return record.ProcessDetails{Stars: row.Stars}
	case scope.Entity:
		d := record.EntityDetails{}
		if owner != nil {
			d.Kind = owner.Type()
		}
		return d
	}
	return nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid updated_at %q", s)
}
