package advisor

import (
	"strings"
	"testing"
)

func suggestionTitles(suggestions []Suggestion) []string {
	titles := make([]string, len(suggestions))
	for i, s := range suggestions {
		titles[i] = s.Title
	}
	return titles
}

func TestSuggestIndexes_WhereColumn(t *testing.T) {
	query := "SELECT id FROM orders WHERE orders.status = 'open'"

	suggestions := SuggestIndexes(query, nil)
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %v", len(suggestions), suggestionTitles(suggestions))
	}

	s := suggestions[0]
	if s.Type != TypeIndex {
		t.Errorf("type = %q, want %q", s.Type, TypeIndex)
	}
	if s.Priority != PriorityHigh {
		t.Errorf("priority = %q, want high", s.Priority)
	}
	if s.SQL != "CREATE INDEX idx_orders_status ON orders (status);" {
		t.Errorf("sql = %q", s.SQL)
	}
}

func TestSuggestIndexes_CompositeColumnOrder(t *testing.T) {
	query := "SELECT * FROM orders WHERE orders.status = 'x' AND orders.total > 10"

	suggestions := SuggestIndexes(query, nil)

	var composite *Suggestion
	for i := range suggestions {
		if strings.Contains(suggestions[i].Title, "composite") {
			if composite != nil {
				t.Fatalf("expected one composite suggestion, got more: %v", suggestionTitles(suggestions))
			}
			composite = &suggestions[i]
		}
	}
	if composite == nil {
		t.Fatalf("no composite suggestion in %v", suggestionTitles(suggestions))
	}
	if !strings.Contains(composite.SQL, "(status, total)") {
		t.Errorf("composite sql = %q, want columns (status, total) in discovery order", composite.SQL)
	}
}

func TestSuggestIndexes_ExistingIndexFiltersSingleNotComposite(t *testing.T) {
	query := "SELECT * FROM orders WHERE orders.status = 'x' AND orders.total > 10"
	existing := []ExistingIndex{{Table: "orders", Column: "status"}}

	suggestions := SuggestIndexes(query, existing)

	for _, s := range suggestions {
		if s.SQL == "CREATE INDEX idx_orders_status ON orders (status);" {
			t.Errorf("single-column suggestion for covered pair should be dropped: %v", s)
		}
	}

	foundComposite := false
	for _, s := range suggestions {
		if strings.Contains(s.SQL, "(status, total)") {
			foundComposite = true
		}
	}
	if !foundComposite {
		t.Errorf("composite suggestion should survive existing-index filtering: %v", suggestionTitles(suggestions))
	}
}

func TestSuggestIndexes_JoinBothSides(t *testing.T) {
	query := "SELECT * FROM orders o JOIN users ON users.id = orders.user_id"

	suggestions := SuggestIndexes(query, nil)
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %v", len(suggestions), suggestionTitles(suggestions))
	}
	if suggestions[0].Title != "Add index on users.id" {
		t.Errorf("first title = %q", suggestions[0].Title)
	}
	if suggestions[1].Title != "Add index on orders.user_id" {
		t.Errorf("second title = %q", suggestions[1].Title)
	}
	for _, s := range suggestions {
		if s.Priority != PriorityHigh {
			t.Errorf("join suggestion priority = %q, want high", s.Priority)
		}
	}
}

func TestSuggestIndexes_OrderByAndGroupByAreMedium(t *testing.T) {
	cases := []struct {
		query string
		title string
	}{
		{"SELECT * FROM events ORDER BY events.created_at", "Add index on events.created_at"},
		{"SELECT count(*) FROM events GROUP BY events.kind", "Add index on events.kind"},
	}

	for _, c := range cases {
		suggestions := SuggestIndexes(c.query, nil)
		if len(suggestions) != 1 {
			t.Fatalf("%q: expected 1 suggestion, got %d", c.query, len(suggestions))
		}
		if suggestions[0].Title != c.title {
			t.Errorf("%q: title = %q, want %q", c.query, suggestions[0].Title, c.title)
		}
		if suggestions[0].Priority != PriorityMedium {
			t.Errorf("%q: priority = %q, want medium", c.query, suggestions[0].Priority)
		}
	}
}

func TestSuggestIndexes_DuplicateReferenceKeepsFirst(t *testing.T) {
	query := "SELECT * FROM orders WHERE orders.status = 'x' ORDER BY orders.status"

	suggestions := SuggestIndexes(query, nil)
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %v", len(suggestions), suggestionTitles(suggestions))
	}
	if suggestions[0].Priority != PriorityHigh {
		t.Errorf("priority = %q, want high (WHERE discovered first)", suggestions[0].Priority)
	}
}

func TestSuggestIndexes_UnqualifiedColumnsIgnored(t *testing.T) {
	query := "SELECT * FROM users WHERE active = true"

	suggestions := SuggestIndexes(query, nil)
	if len(suggestions) != 0 {
		t.Errorf("unqualified columns should yield no suggestions, got %v", suggestionTitles(suggestions))
	}
}

func TestSuggestIndexes_LiteralContentIgnored(t *testing.T) {
	query := "SELECT * FROM notes WHERE notes.body = 'tbl.col = 5'"

	suggestions := SuggestIndexes(query, nil)
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %v", len(suggestions), suggestionTitles(suggestions))
	}
	if suggestions[0].Title != "Add index on notes.body" {
		t.Errorf("title = %q, literal content leaked into extraction", suggestions[0].Title)
	}
}
