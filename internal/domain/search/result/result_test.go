package result

import (
	"testing"

	"github.com/lucasveenman/trace/internal/domain/record"
	"github.com/lucasveenman/trace/internal/domain/scope"
)

func mustRecord(t *testing.T, id string) record.Record {
	t.Helper()
	r, err := record.New(record.Params{ID: id, Title: "title-" + id, Scope: scope.Material})
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}

func TestNew(t *testing.T) {
	h := New(mustRecord(t, "a"), 85)
	rec := h.Record()
	if rec.ID() != "a" {
		t.Errorf("Record().ID() = %q", rec.ID())
	}
	if h.Score() != 85 {
		t.Errorf("Score() = %d", h.Score())
	}
}

func TestRecords_PreservesOrder(t *testing.T) {
	hits := []Hit{New(mustRecord(t, "b"), 10), New(mustRecord(t, "a"), 100)}
	recs := Records(hits)
	if len(recs) != 2 {
		t.Fatalf("len = %d", len(recs))
	}
	if recs[0].ID() != "b" || recs[1].ID() != "a" {
		t.Errorf("order = %q, %q", recs[0].ID(), recs[1].ID())
	}
}

func TestCounts_Get(t *testing.T) {
	c := Counts{scope.FilterAll: 3}
	if c.Get(scope.FilterAll) != 3 {
		t.Errorf("Get(all) = %d", c.Get(scope.FilterAll))
	}
	if c.Get(scope.FilterComponents) != 0 {
		t.Errorf("Get(components) = %d", c.Get(scope.FilterComponents))
	}
}
