package catalog

import (
	"errors"
	"testing"

	"github.com/lucasveenman/trace/internal/domain"
	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

func mustEntity(t *testing.T, id, name string, typ entity.Type) entity.Entity {
	t.Helper()
	e, err := entity.New(id, name, typ, true, name+".com", entity.Profile{})
	if err != nil {
		t.Fatalf("entity.New: %v", err)
	}
	return e
}

func mustRecord(t *testing.T, p record.Params) record.Record {
	t.Helper()
	r, err := record.New(p)
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}

func TestNew_SynthesizesCompanies(t *testing.T) {
	apple := mustEntity(t, "ent-apple", "Apple", entity.TypeCompany)
	iso := mustEntity(t, "ent-iso", "ISO", entity.TypeOrganisation)
	user := mustEntity(t, "@lucas", "Lucas", entity.TypeUser)

	phone := mustRecord(t, record.Params{
		ID: "prd-iphone15", Title: "iPhone 15 Pro", Scope: scope.Product, Entity: &apple,
	})

	c, err := New([]entity.Entity{apple, iso, user}, []record.Record{phone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recs := c.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (1 real + 1 synthesized), got %d", len(recs))
	}
	if recs[0].ID() != "prd-iphone15" {
		t.Errorf("dataset records must come first, got %q", recs[0].ID())
	}
	co := recs[1]
	if co.ID() != "co-ent-apple" || co.Title() != "Apple" || co.Scope() != scope.Entity {
		t.Errorf("unexpected synthesized record: id=%q title=%q scope=%q", co.ID(), co.Title(), co.Scope())
	}
	if co.Href() != "/companies/apple" {
		t.Errorf("Href() = %q", co.Href())
	}
	if co.UpdatedAt().Year() != 2000 {
		t.Errorf("UpdatedAt() = %v, want 2000-01-01", co.UpdatedAt())
	}
}

func TestNew_SkipsCompaniesWithPage(t *testing.T) {
	apple := mustEntity(t, "ent-apple", "Apple", entity.TypeCompany)
	page := mustRecord(t, record.Params{
		ID: "apple", Title: "Apple", Scope: scope.Entity, Entity: &apple,
	})

	c, err := New([]entity.Entity{apple}, []record.Record{page})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestNew_Errors(t *testing.T) {
	apple := mustEntity(t, "ent-apple", "Apple", entity.TypeOrganisation)
	ghost := mustEntity(t, "ent-ghost", "Ghost", entity.TypeOrganisation)
	a := mustRecord(t, record.Params{ID: "a", Title: "A", Scope: scope.Material})
	orphan := mustRecord(t, record.Params{ID: "b", Title: "B", Scope: scope.Material, Entity: &ghost})

	tests := []struct {
		name     string
		entities []entity.Entity
		records  []record.Record
	}{
		{"duplicate entity", []entity.Entity{apple, apple}, nil},
		{"duplicate record", []entity.Entity{apple}, []record.Record{a, a}},
		{"unknown entity", []entity.Entity{apple}, []record.Record{orphan}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.entities, tc.records)
			if !errors.Is(err, domain.ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestEntity_Lookup(t *testing.T) {
	apple := mustEntity(t, "ent-apple", "Apple", entity.TypeCompany)
	c, err := New([]entity.Entity{apple}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e, err := c.Entity("ent-apple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Name() != "Apple" {
		t.Errorf("Name() = %q", e.Name())
	}

	if _, err := c.Entity("missing"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
	if len(c.Entities()) != 1 {
		t.Errorf("Entities() len = %d", len(c.Entities()))
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Apple", "apple"},
		{"Raspberry Pi Ltd.", "raspberry-pi-ltd"},
		{"  Café  Noir ", "cafe-noir"},
		{"OmnitudeDesign", "omnitudedesign"},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
