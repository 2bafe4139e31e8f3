package trace

import (
	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/search/result"
)

func hitFromResult(h *result.Hit) Hit {
	r := h.Record()
	out := Hit{
		ID:        r.ID(),
		Title:     r.Title(),
		Subtitle:  r.Subtitle(),
		Scope:     string(r.Scope()),
		Role:      r.Role(),
		Href:      r.Href(),
		Tags:      r.Tags(),
		UpdatedAt: r.UpdatedAt(),
		Score:     h.Score(),
		Stars:     record.Stars(r.Details()),
	}
	if e := r.Entity(); e != nil {
		out.EntityID = e.ID()
		out.EntityName = e.Name()
	}
	return out
}
