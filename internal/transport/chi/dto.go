package chi

import (
	"time"

	"github.com/lucasveenman/trace/internal/domain/entity"
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/request"
	"github.com/lucasveenman/trace/internal/domain/search/result"
)

type searchResponse struct {
	Query      string         `json:"query"`
	Scope      scope.Filter   `json:"scope"`
	Role       string         `json:"role,omitempty"`
	Sort       string         `json:"sort"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Hits       []hitJSON      `json:"hits"`
	Counts     map[string]int `json:"counts"`
}

type hitJSON struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Subtitle  string       `json:"subtitle,omitempty"`
	Scope     scope.Scope  `json:"scope"`
	Role      string       `json:"role,omitempty"`
	Href      string       `json:"href,omitempty"`
	Tags      []string     `json:"tags,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
	Score     int          `json:"score"`
	Stars     int          `json:"stars,omitempty"`
	Entity    *entityRef   `json:"entity,omitempty"`
	Details   *detailsJSON `json:"details,omitempty"`
}

type entityRef struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     entity.Type `json:"type"`
	Verified bool        `json:"verified"`
}

// detailsJSON flattens the scope-specific payload; unset fields are omitted.
type detailsJSON struct {
	Code   string        `json:"code,omitempty"`
	Grade  string        `json:"grade,omitempty"`
	Stage  string        `json:"stage,omitempty"`
	Kind   entity.Type   `json:"kind,omitempty"`
	Images []string      `json:"images,omitempty"`
	Specs  []record.Spec `json:"specs,omitempty"`
	Badges []string      `json:"badges,omitempty"`
}

type entityJSON struct {
	entityRef
	Subtitle    string         `json:"subtitle,omitempty"`
	Description string         `json:"description,omitempty"`
	LogoURL     string         `json:"logo_url,omitempty"`
	Meta        entity.Meta    `json:"meta"`
	Socials     entity.Socials `json:"socials"`
	Stats       entity.Stats   `json:"stats"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchToJSON(req *request.Request, page *result.Page, counts result.Counts) searchResponse {
	hits := make([]hitJSON, len(page.Hits))
	for i := range page.Hits {
		hits[i] = hitToJSON(&page.Hits[i])
	}
	c := make(map[string]int, len(counts))
	for f, n := range counts {
		c[string(f)] = n
	}
	return searchResponse{
		Query:      req.Query(),
		Scope:      req.Filter(),
		Role:       req.Role(),
		Sort:       string(req.Order()),
		Page:       page.Page,
		PageSize:   req.PageSize(),
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Hits:       hits,
		Counts:     c,
	}
}

func hitToJSON(h *result.Hit) hitJSON {
	r := h.Record()
	out := hitJSON{
		ID:       r.ID(),
		Title:    r.Title(),
		Subtitle: r.Subtitle(),
		Scope:    r.Scope(),
		Role:     r.Role(),
		Href:     r.Href(),
		Tags:     r.Tags(),
		Score:    h.Score(),
		Stars:    record.Stars(r.Details()),
		Details:  detailsToJSON(r.Details()),
	}
	if t := r.UpdatedAt(); !t.IsZero() {
		out.UpdatedAt = &t
	}
	if e := r.Entity(); e != nil {
		ref := refToJSON(e)
		out.Entity = &ref
	}
	return out
}

func refToJSON(e *entity.Entity) entityRef {
	return entityRef{ID: e.ID(), Name: e.Name(), Type: e.Type(), Verified: e.Verified()}
}

func detailsToJSON(d record.Details) *detailsJSON {
	switch v := d.(type) {
	case record.StandardDetails:
		return &detailsJSON{Code: v.Code}
	case record.MaterialDetails:
		return &detailsJSON{Grade: v.Grade}
	case record.ProductDetails:
		return &detailsJSON{Images: v.Images, Specs: v.Specs, Badges: v.Badges}
	case record.ProjectDetails:
		return &detailsJSON{Stage: v.Stage, Images: v.Images}
	case record.EntityDetails:
		return &detailsJSON{Kind: v.Kind}
	}
	return nil
}

func entityToJSON(e *entity.Entity) entityJSON {
	p := e.Profile()
	return entityJSON{
		entityRef:   refToJSON(e),
		Subtitle:    e.Subtitle(),
		Description: p.Description,
		LogoURL:     p.LogoURL,
		Meta:        p.Meta,
		Socials:     p.Socials,
		Stats:       p.Stats,
	}
}
