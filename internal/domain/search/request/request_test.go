package request

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lucasveenman/trace/internal/domain/scope"
	"github.com/lucasveenman/trace/internal/domain/search/order"
)

func TestNew_Defaults(t *testing.T) {
	r := New("  hello  ", "", "", "", 0, 0)
	if r.Query() != "hello" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Filter() != scope.FilterAll {
		t.Errorf("Filter() = %q, want all", r.Filter())
	}
	if r.Order() != order.Relevance {
		t.Errorf("Order() = %q, want relevance", r.Order())
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", r.PageSize(), DefaultPageSize)
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r := New("bolt", scope.Of(scope.Standard), " component ", order.Recent, 3, 10)
	if r.Filter() != scope.Of(scope.Standard) {
		t.Errorf("Filter() = %q", r.Filter())
	}
	if r.Role() != "component" {
		t.Errorf("Role() = %q", r.Role())
	}
	if r.Order() != order.Recent {
		t.Errorf("Order() = %q", r.Order())
	}
	if r.Page() != 3 || r.PageSize() != 10 {
		t.Errorf("Page()/PageSize() = %d/%d", r.Page(), r.PageSize())
	}
}

func TestNew_InvalidValuesFallBack(t *testing.T) {
	r := New("q", "suppliers", "", "z-a", -4, MaxPageSize+1)
	if r.Filter() != scope.FilterAll {
		t.Errorf("Filter() = %q, want all", r.Filter())
	}
	if r.Order() != order.Relevance {
		t.Errorf("Order() = %q, want relevance", r.Order())
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want default", r.PageSize())
	}
}

func TestNew_QueryTruncatedOnRuneBoundary(t *testing.T) {
	q := strings.Repeat("é", MaxQueryLength) // 2 bytes per rune
	r := New(q, "", "", "", 1, 1)
	if len(r.Query()) > MaxQueryLength {
		t.Errorf("len(Query()) = %d, want <= %d", len(r.Query()), MaxQueryLength)
	}
	if !utf8.ValidString(r.Query()) {
		t.Error("truncated query must stay valid UTF-8")
	}
}

func TestWithFilter(t *testing.T) {
	r := New("apple", scope.FilterComponents, "component", order.Alphabetical, 2, 5)
	all := r.WithFilter(scope.FilterAll)
	if all.Filter() != scope.FilterAll {
		t.Errorf("Filter() = %q", all.Filter())
	}
	if all.Query() != "apple" || all.Role() != "component" || all.Order() != order.Alphabetical {
		t.Errorf("WithFilter must keep the other fields: %+v", all)
	}
	if r.Filter() != scope.FilterComponents {
		t.Error("WithFilter must not modify the receiver")
	}
}
