package pipeline

import (
	"regexp"
	"strings"

	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// NormalizeDescription lower-cases s and collapses every run of non-alphanumeric
// characters, underscores included, into a single space.
func NormalizeDescription(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(s), " ")
}

type rule struct {
	label    string
	keywords []string
}

// Classifier assigns a taxonomy label by substring keyword match.
// When several categories match, the one listed last wins.
type Classifier struct {
	rules        []rule
	defaultLabel string
}

// NewClassifier prepares t for matching. Keywords are normalized like descriptions.
func NewClassifier(t *taxonomy.Taxonomy) *Classifier {
	c := &Classifier{defaultLabel: t.Default()}
	for _, cat := range t.Categories() {
		r := rule{label: cat.Name}
		for _, kw := range cat.Keywords {
			if kw = strings.TrimSpace(NormalizeDescription(kw)); kw != "" {
				r.keywords = append(r.keywords, kw)
			}
		}
		c.rules = append(c.rules, r)
	}
	return c
}

// Default returns the label used when nothing matches.
func (c *Classifier) Default() string {
	return c.defaultLabel
}

// Classify returns the label for description.
func (c *Classifier) Classify(description string) string {
	label, _ := c.match(NormalizeDescription(description))
	return label
}

func (c *Classifier) match(normalized string) (string, bool) {
	label, matched := c.defaultLabel, false
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(normalized, kw) {
				label, matched = r.label, true
				break
			}
		}
	}
	return label, matched
}

// ClassifyAll sets Category on every transaction and returns how many fell back to the default.
func (c *Classifier) ClassifyAll(txs []domain.Transaction) int {
	misses := 0
	for i := range txs {
		label, ok := c.match(NormalizeDescription(txs[i].Description))
		txs[i].Category = label
		if !ok {
			misses++
		}
	}
	return misses
}

// Unclassified returns the distinct descriptions that matched no category, in first-seen order.
func (c *Classifier) Unclassified(txs []domain.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range txs {
		if _, ok := c.match(NormalizeDescription(tx.Description)); ok {
			continue
		}
		if seen[tx.Description] {
			continue
		}
		seen[tx.Description] = true
		out = append(out, tx.Description)
	}
	return out
}
