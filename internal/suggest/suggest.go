// Package suggest proposes taxonomy keywords for descriptions that matched no
// category. Suggestions are advisory; they never change a classification.
package suggest

import (
	"context"
	"fmt"
	"sort"

	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/logger"
	"github.com/dvloznov/finance-summary/internal/pipeline"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
)

// DefaultLimit is the number of descriptions sent to the model.
const DefaultLimit = 25

// Suggestion maps one description to a category through a new keyword.
type Suggestion struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Keyword     string `json:"keyword"`
}

// DescriptionCount is an unclassified description and how often it occurs.
type DescriptionCount struct {
	Description string
	Count       int
}

// Suggester asks a Generator for keywords.
type Suggester struct {
	gen        Generator
	tax        *taxonomy.Taxonomy
	classifier *pipeline.Classifier
	validator  *CategoryValidator
}

// New creates a Suggester for tax.
func New(gen Generator, tax *taxonomy.Taxonomy) *Suggester {
	return &Suggester{
		gen:        gen,
		tax:        tax,
		classifier: pipeline.NewClassifier(tax),
		validator:  NewCategoryValidator(tax),
	}
}

// TopUnclassified returns up to limit descriptions that match no category,
// most frequent first, ties in first-seen order.
func (s *Suggester) TopUnclassified(txs []domain.Transaction, limit int) []DescriptionCount {
	if limit <= 0 {
		limit = DefaultLimit
	}

	unclassified := s.classifier.Unclassified(txs)
	counts := make(map[string]int, len(unclassified))
	for _, d := range unclassified {
		counts[d] = 0
	}
	for _, tx := range txs {
		if _, ok := counts[tx.Description]; ok {
			counts[tx.Description]++
		}
	}

	out := make([]DescriptionCount, 0, len(unclassified))
	for _, d := range unclassified {
		if d == pipeline.UnknownDescription {
			continue
		}
		out = append(out, DescriptionCount{Description: d, Count: counts[d]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Suggest sends the most frequent unclassified descriptions to the model and
// returns the suggestions that name a known category.
func (s *Suggester) Suggest(ctx context.Context, txs []domain.Transaction, limit int) ([]Suggestion, error) {
	log := logger.FromContext(ctx)

	descriptions := s.TopUnclassified(txs, limit)
	if len(descriptions) == 0 {
		log.Info().Msg("No unclassified descriptions")
		return nil, nil
	}

	raw, err := s.gen.Generate(ctx, buildPrompt(s.tax.Names(), descriptions))
	if err != nil {
		return nil, fmt.Errorf("Suggest: %w", err)
	}

	parsed, err := parseSuggestions(raw)
	if err != nil {
		return nil, fmt.Errorf("Suggest: %w", err)
	}

	var out []Suggestion
	for _, p := range parsed {
		valid, err := s.validator.ValidateSuggestion(p)
		if err != nil {
			log.Debug().Err(err).Str("description", p.Description).Msg("Discarded suggestion")
			continue
		}
		out = append(out, valid)
	}

	log.Info().Int("requested", len(descriptions)).Int("returned", len(parsed)).Int("accepted", len(out)).Msg("Keyword suggestions")
	return out, nil
}
