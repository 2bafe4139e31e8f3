package entity

import "fmt"

// Type distinguishes entity kinds.
type Type string

const (
	// TypeCompany is a commercial organisation; companies are searchable by name.
	TypeCompany      Type = "company"
	TypeOrganisation Type = "organisation"
	TypeUser         Type = "user"
)

// IsValid checks if the entity type is supported.
func (t Type) IsValid() bool {
	return t == TypeCompany || t == TypeOrganisation || t == TypeUser
}

// Meta holds descriptive facts shown on an entity header.
type Meta struct {
	HQ      string `json:"hq,omitempty"`
	Founded int    `json:"founded,omitempty"`
	Size    string `json:"size,omitempty"`
	Focus   string `json:"focus,omitempty"`
}

// Socials holds outbound profile links.
type Socials struct {
	Website   string `json:"website,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Stats holds aggregate counters.
type Stats struct {
	Products  int `json:"products,omitempty"`
	Repos     int `json:"repos,omitempty"`
	Followers int `json:"followers,omitempty"`
	Stars     int `json:"stars,omitempty"`
}

// Profile is the display metadata of an entity.
type Profile struct {
	Description string
	LogoURL     string
	Meta        Meta
	Socials     Socials
	Stats       Stats
}

// Entity is an organisation, company or user that owns records (immutable value object).
type Entity struct {
	id         string
	name       string
	entityType Type
	verified   bool
	subtitle   string
	profile    Profile
}

// New validates and creates an Entity.
func New(id, name string, t Type, verified bool, subtitle string, profile Profile) (Entity, error) {
	if id == "" {
		return Entity{}, fmt.Errorf("entity ID is required")
	}
	if name == "" {
		return Entity{}, fmt.Errorf("entity %q: name is required", id)
	}
	if !t.IsValid() {
		return Entity{}, fmt.Errorf("entity %q: invalid type %q", id, t)
	}
	return Entity{
		id:         id,
		name:       name,
		entityType: t,
		verified:   verified,
		subtitle:   subtitle,
		profile:    profile,
	}, nil
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Name returns the display name.
func (e *Entity) Name() string { return e.name }

// Type returns the entity kind.
func (e *Entity) Type() Type { return e.entityType }

// Verified reports whether the entity carries a verification badge.
func (e *Entity) Verified() bool { return e.verified }

// Subtitle returns the secondary line, usually a domain or handle.
func (e *Entity) Subtitle() string { return e.subtitle }

// Profile returns the display metadata.
func (e *Entity) Profile() Profile { return e.profile }
