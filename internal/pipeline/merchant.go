package pipeline

import (
	"strings"
	"unicode"

	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MerchantResolver labels the counterparty of a transaction.
type MerchantResolver struct {
	aliases *Classifier
}

// NewMerchantResolver creates a resolver backed by an alias taxonomy. aliases may be nil.
func NewMerchantResolver(aliases *taxonomy.Taxonomy) *MerchantResolver {
	m := &MerchantResolver{}
	if aliases != nil {
		m.aliases = NewClassifier(aliases)
	}
	return m
}

// Resolve returns the explicit merchant if present, then an alias match, then
// the first non-numeric word of the description in title case.
func (m *MerchantResolver) Resolve(tx domain.Transaction) string {
	if tx.Merchant != "" {
		return tx.Merchant
	}

	normalized := NormalizeDescription(tx.Description)
	if m.aliases != nil {
		if label, ok := m.aliases.match(normalized); ok && label != "" {
			return label
		}
	}

	for _, word := range strings.Fields(normalized) {
		if strings.IndexFunc(word, unicode.IsLetter) < 0 {
			continue
		}
		return cases.Title(language.Und).String(word)
	}
	return UnknownDescription
}

// ResolveAll sets Merchant on every transaction.
func (m *MerchantResolver) ResolveAll(txs []domain.Transaction) {
	for i := range txs {
		txs[i].Merchant = m.Resolve(txs[i])
	}
}
