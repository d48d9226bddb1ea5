package pipeline

import (
	"slices"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-summary/internal/domain"
)

// Filter selects transactions before aggregation. Empty fields match everything.
type Filter struct {
	From       *civil.Date // inclusive
	To         *civil.Date // inclusive
	Types      []domain.TxType
	Categories []string
}

// IsZero reports whether the filter keeps every transaction.
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && len(f.Types) == 0 && len(f.Categories) == 0
}

// Apply returns the matching transactions in input order. txs is not modified.
func (f Filter) Apply(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func (f Filter) match(tx domain.Transaction) bool {
	if f.From != nil && tx.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.Date.After(*f.To) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, tx.Type) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, tx.Category) {
		return false
	}
	return true
}
