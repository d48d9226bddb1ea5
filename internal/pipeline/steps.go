package pipeline

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-summary/internal/domain"
)

// PipelineStep represents a single step of a processing run.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	Source           string
	Table            domain.Table
	Transactions     []domain.Transaction
	Stats            NormalizeStats
	HasTransactionID bool
	Unclassified     int
}

// LoadStep reads the source table.
type LoadStep struct{ Engine *Engine }

func (s *LoadStep) Execute(ctx context.Context, state *PipelineState) error {
	table, err := s.Engine.Load(ctx, state.Source)
	if err != nil {
		return err
	}
	state.Table = table
	return nil
}

// NormalizeStep turns the raw table into typed transactions.
type NormalizeStep struct{ Normalizer *Normalizer }

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := s.Normalizer.Normalize(state.Table)
	if err != nil {
		return err
	}
	state.Transactions = res.Transactions
	state.Stats = res.Stats
	state.HasTransactionID = res.HasTransactionID
	return nil
}

// ClassifyStep assigns a category to every transaction.
type ClassifyStep struct{ Classifier *Classifier }

func (s *ClassifyStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Unclassified = s.Classifier.ClassifyAll(state.Transactions)
	return nil
}

// MerchantStep labels the counterparty of every transaction.
type MerchantStep struct{ Resolver *MerchantResolver }

func (s *MerchantStep) Execute(ctx context.Context, state *PipelineState) error {
	s.Resolver.ResolveAll(state.Transactions)
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially and stops at the first error.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
