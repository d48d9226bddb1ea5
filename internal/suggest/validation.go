package suggest

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finance-summary/internal/pipeline"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
)

// CategoryValidator checks model suggestions against the taxonomy.
type CategoryValidator struct {
	categories map[string]string // normalized name -> canonical name
}

// NewCategoryValidator creates a validator from the taxonomy's category names.
func NewCategoryValidator(tax *taxonomy.Taxonomy) *CategoryValidator {
	v := &CategoryValidator{categories: make(map[string]string, tax.Len())}
	for _, name := range tax.Names() {
		v.categories[normalizeCategory(name)] = name
	}
	return v
}

// ValidateCategory returns the canonical category name, or an error if unknown.
func (v *CategoryValidator) ValidateCategory(category string) (string, error) {
	name, ok := v.categories[normalizeCategory(category)]
	if !ok {
		return "", fmt.Errorf("invalid category: %q (normalized: %q)", category, normalizeCategory(category))
	}
	return name, nil
}

// ValidateSuggestion canonicalizes s. The keyword must occur in the
// normalized description so that adding it would classify that description.
func (v *CategoryValidator) ValidateSuggestion(s Suggestion) (Suggestion, error) {
	category, err := v.ValidateCategory(s.Category)
	if err != nil {
		return Suggestion{}, err
	}
	keyword := strings.TrimSpace(pipeline.NormalizeDescription(s.Keyword))
	if keyword == "" {
		return Suggestion{}, fmt.Errorf("empty keyword for %q", s.Description)
	}
	if !strings.Contains(pipeline.NormalizeDescription(s.Description), keyword) {
		return Suggestion{}, fmt.Errorf("keyword %q does not occur in %q", keyword, s.Description)
	}
	return Suggestion{Description: s.Description, Category: category, Keyword: keyword}, nil
}

// normalizeCategory normalizes a category name for comparison.
// Converts to uppercase and trims whitespace for case-insensitive comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
