package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
)

// MockGenerator is a mock implementation of Generator for testing.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "[]", nil
}

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.New("Other",
		taxonomy.Category{Name: "Groceries", Keywords: []string{"tesco"}},
		taxonomy.Category{Name: "Utilities", Keywords: []string{"water"}},
	)
	if err != nil {
		t.Fatalf("taxonomy.New() error = %v", err)
	}
	return tax
}

func txs(descriptions ...string) []domain.Transaction {
	out := make([]domain.Transaction, len(descriptions))
	for i, d := range descriptions {
		out[i] = domain.Transaction{Description: d}
	}
	return out
}

func TestTopUnclassified(t *testing.T) {
	s := New(&MockGenerator{}, testTaxonomy(t))
	input := txs("Tesco", "OCTOPUS ENERGY", "Unknown", "Corner Deli", "OCTOPUS ENERGY", "Water bill", "Corner Deli", "Corner Deli")

	got := s.TopUnclassified(input, 10)
	if len(got) != 2 {
		t.Fatalf("TopUnclassified() = %+v, want 2 entries", got)
	}
	if got[0] != (DescriptionCount{"Corner Deli", 3}) || got[1] != (DescriptionCount{"OCTOPUS ENERGY", 2}) {
		t.Errorf("TopUnclassified() = %+v", got)
	}

	if limited := s.TopUnclassified(input, 1); len(limited) != 1 {
		t.Errorf("TopUnclassified(limit 1) returned %d entries", len(limited))
	}
}

func TestSuggest(t *testing.T) {
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "```json\n[" +
				`{"description":"OCTOPUS ENERGY","category":"utilities","keyword":"Octopus"},` +
				`{"description":"Corner Deli","category":"Restaurants","keyword":"deli"},` +
				`{"description":"Corner Deli","category":"Groceries","keyword":"bakery"}` +
				"]\n```", nil
		},
	}
	s := New(gen, testTaxonomy(t))

	got, err := s.Suggest(context.Background(), txs("OCTOPUS ENERGY", "Corner Deli"), 0)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	want := Suggestion{Description: "OCTOPUS ENERGY", Category: "Utilities", Keyword: "octopus"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("Suggest() = %+v, want [%+v]", got, want)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("Generate called %d times, want 1", len(gen.prompts))
	}
	for _, fragment := range []string{"Groceries", "Utilities", `"OCTOPUS ENERGY" (1)`} {
		if !strings.Contains(gen.prompts[0], fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
}

func TestSuggest_NothingToAsk(t *testing.T) {
	gen := &MockGenerator{}
	s := New(gen, testTaxonomy(t))

	got, err := s.Suggest(context.Background(), txs("Tesco", "Unknown"), 5)
	if err != nil || got != nil {
		t.Errorf("Suggest() = %v, %v, want nil, nil", got, err)
	}
	if len(gen.prompts) != 0 {
		t.Error("model should not be called when every description is classified")
	}
}

func TestSuggest_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, prompt string) (string, error)
	}{
		{"model error", func(context.Context, string) (string, error) { return "", errors.New("quota") }},
		{"not json", func(context.Context, string) (string, error) { return "I cannot help with that", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&MockGenerator{GenerateFunc: tt.fn}, testTaxonomy(t))
			if _, err := s.Suggest(context.Background(), txs("Corner Deli"), 5); err == nil {
				t.Error("Suggest() expected error")
			}
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"chatter", "Here you go: [1, 2] hope it helps", "[1, 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoryValidator(t *testing.T) {
	v := NewCategoryValidator(testTaxonomy(t))

	if name, err := v.ValidateCategory("  groceries "); err != nil || name != "Groceries" {
		t.Errorf("ValidateCategory() = %q, %v, want Groceries", name, err)
	}
	if _, err := v.ValidateCategory("Other"); err == nil {
		t.Error("the default label is not a category a keyword can target")
	}
	if _, err := v.ValidateSuggestion(Suggestion{Description: "x", Category: "Groceries", Keyword: "  "}); err == nil {
		t.Error("empty keyword should be rejected")
	}
}
