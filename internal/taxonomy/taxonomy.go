// Package taxonomy loads the ordered keyword tables used to classify transactions.
//
// A taxonomy is a list, not a map: the position of a category encodes its
// priority, with later entries overriding earlier ones when a description
// matches both.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLabel is assigned when no category matches and the file does not set one.
const DefaultLabel = "Other"

var (
	//go:embed categories.yaml
	defaultCategories []byte
	//go:embed merchants.yaml
	defaultMerchants []byte
)

// Category is one label and the keywords that trigger it.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is an immutable, ordered category -> keywords table.
type Taxonomy struct {
	categories   []Category
	defaultLabel string
}

type file struct {
	Default    *string    `yaml:"default"`
	Categories []Category `yaml:"categories"`
}

// New builds a taxonomy from categories in priority order.
func New(defaultLabel string, categories ...Category) (*Taxonomy, error) {
	t := &Taxonomy{defaultLabel: strings.TrimSpace(defaultLabel)}
	seen := make(map[string]bool, len(categories))

	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("taxonomy: category %d has no name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("taxonomy: duplicate category %q", name)
		}
		seen[name] = true

		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		t.categories = append(t.categories, Category{Name: name, Keywords: keywords})
	}

	return t, nil
}

// Parse decodes a YAML taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: decode yaml: %w", err)
	}

	label := DefaultLabel
	if f.Default != nil {
		label = *f.Default
	}
	return New(label, f.Categories...)
}

// Load reads and parses a taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %q: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in category taxonomy.
func Default() *Taxonomy {
	t, err := Parse(defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded categories: %v", err))
	}
	return t
}

// DefaultMerchants returns the built-in merchant alias table.
// Its default label is empty: unmatched descriptions fall through to token inference.
func DefaultMerchants() *Taxonomy {
	t, err := Parse(defaultMerchants)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded merchants: %v", err))
	}
	return t
}

// Categories returns a copy of the categories in priority order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Names returns the category labels in priority order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Default returns the label used when nothing matches.
func (t *Taxonomy) Default() string {
	return t.defaultLabel
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	return len(t.categories)
}

// Has reports whether name is one of the categories or the default label.
func (t *Taxonomy) Has(name string) bool {
	if name == t.defaultLabel {
		return true
	}
	for _, c := range t.categories {
		if c.Name == name {
			return true
		}
	}
	return false
}
