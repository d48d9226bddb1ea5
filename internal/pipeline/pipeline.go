// Package pipeline turns a raw transaction CSV into normalized, classified
// transactions and the summary tables derived from them.
//
// The flow is Load -> Normalize -> Classify -> Summarize. Everything after
// Load is an in-memory, synchronous transform over one batch.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/logger"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
	"github.com/google/uuid"
)

// Engine wires the stages of one processing run.
type Engine struct {
	Normalizer *Normalizer
	Classifier *Classifier
	Merchants  *MerchantResolver
	// Store serves gs:// sources. It may be nil when only local files are read.
	Store ObjectStore
}

// NewEngine builds an Engine from explicit tables. A nil categories taxonomy
// selects the embedded default; a nil merchants taxonomy disables alias matching.
func NewEngine(categories, merchants *taxonomy.Taxonomy, store ObjectStore, dateLayouts ...string) *Engine {
	if categories == nil {
		categories = taxonomy.Default()
	}
	return &Engine{
		Normalizer: NewNormalizer(dateLayouts...),
		Classifier: NewClassifier(categories),
		Merchants:  NewMerchantResolver(merchants),
		Store:      store,
	}
}

// Run loads the source at uri and processes it. A missing source or a schema
// violation is returned before any row is processed.
func (e *Engine) Run(ctx context.Context, uri string) (*Result, error) {
	state := &PipelineState{Source: uri}
	steps := append([]PipelineStep{&LoadStep{Engine: e}}, e.processSteps()...)

	if err := NewPipeline(steps...).Execute(ctx, state); err != nil {
		return nil, fmt.Errorf("Run: %s: %w", uri, err)
	}
	return e.finish(ctx, state), nil
}

// Process normalizes and classifies an already loaded table.
func (e *Engine) Process(ctx context.Context, table domain.Table) (*Result, error) {
	state := &PipelineState{Table: table}

	if err := NewPipeline(e.processSteps()...).Execute(ctx, state); err != nil {
		return nil, fmt.Errorf("Process: %w", err)
	}
	return e.finish(ctx, state), nil
}

func (e *Engine) processSteps() []PipelineStep {
	steps := []PipelineStep{
		&NormalizeStep{Normalizer: e.Normalizer},
		&ClassifyStep{Classifier: e.Classifier},
	}
	if e.Merchants != nil {
		steps = append(steps, &MerchantStep{Resolver: e.Merchants})
	}
	return steps
}

func (e *Engine) finish(ctx context.Context, state *PipelineState) *Result {
	log := logger.FromContext(ctx)

	res := &Result{
		RunID:            uuid.NewString(),
		Source:           state.Source,
		Transactions:     state.Transactions,
		Stats:            state.Stats,
		HasTransactionID: state.HasTransactionID,
		Unclassified:     state.Unclassified,
	}

	log.Info().
		Str("run_id", res.RunID).
		Str("source", res.Source).
		Int("rows_loaded", res.Stats.Loaded).
		Int("duplicates_removed", res.Stats.Duplicates).
		Int("rows_dropped", res.Stats.Dropped).
		Int("rows_retained", res.Stats.Retained).
		Int("type_filled", res.Stats.TypeFilled).
		Int("type_inferred", res.Stats.TypeInferred).
		Int("unclassified", res.Unclassified).
		Msg("Processed transactions")

	return res
}
