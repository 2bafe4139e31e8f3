package record

import (
	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

// Details is the scope-specific payload of a record. The set of
// implementations is closed: one type per scope.
type Details interface {
	Scope() scope.Scope
	sealed()
}

// Spec is a labelled technical value shown on product cards.
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// StandardDetails describes a published standard.
type StandardDetails struct {
	Code  string
	Stars int
}

// MaterialDetails describes a material grade.
type MaterialDetails struct {
	Grade string
	Stars int
}

// ProductDetails describes a product; the first image is the card default.
type ProductDetails struct {
	Stars  int
	Images []string
	Specs  []Spec
	Badges []string
}

// ProjectDetails describes a development project.
type ProjectDetails struct {
	Stage  string
	Stars  int
	Images []string
}

// ProcessDetails describes a manufacturing process.
type ProcessDetails struct {
	Stars int
}

// EntityDetails marks an entity profile record.
type EntityDetails struct {
	Kind entity.Type
}

func (StandardDetails) Scope() scope.Scope { return scope.Standard }
func (MaterialDetails) Scope() scope.Scope { return scope.Material }
func (ProductDetails) Scope() scope.Scope  { return scope.Product }
func (ProjectDetails) Scope() scope.Scope  { return scope.Project }
func (ProcessDetails) Scope() scope.Scope  { return scope.Process }
func (EntityDetails) Scope() scope.Scope   { return scope.Entity }

func (StandardDetails) sealed() {}
func (MaterialDetails) sealed() {}
func (ProductDetails) sealed()  {}
func (ProjectDetails) sealed()  {}
func (ProcessDetails) sealed()  {}
func (EntityDetails) sealed()   {}

// Stars returns the star count carried by the payload, 0 when it has none.
func Stars(d Details) int {
	switch v := d.(type) {
	case StandardDetails:
		return v.Stars
	case MaterialDetails:
		return v.Stars
	case ProductDetails:
		return v.Stars
	case ProjectDetails:
		return v.Stars
	case ProcessDetails:
		return v.Stars
	default:
		return 0
	}
}
