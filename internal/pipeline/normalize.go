package pipeline

import (
	"github.com/dvloznov/finance-summary/internal/domain"
)

// Normalizer turns a raw table into typed transactions.
type Normalizer struct {
	layouts []string
}

// NewNormalizer creates a Normalizer. With no layouts, DefaultDateLayouts is used.
func NewNormalizer(layouts ...string) *Normalizer {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return &Normalizer{layouts: append([]string(nil), layouts...)}
}

// Normalize checks the schema, trims and dedupes rows, parses typed fields and
// fills missing types. Rows with an unparseable date or amount are dropped.
// The only error is a *domain.SchemaError.
func (n *Normalizer) Normalize(table domain.Table) (*NormalizeResult, error) {
	if err := domain.CheckSchema(table); err != nil {
		return nil, err
	}

	stats := NormalizeStats{Loaded: len(table.Rows)}
	hasType := table.Has(domain.ColumnType)

	seen := make(map[string]struct{}, len(table.Rows))
	txs := make([]domain.Transaction, 0, len(table.Rows))
	typeCounts := make(map[domain.TxType]int, len(domain.TxTypes))

	for _, raw := range table.Rows {
		row := trimRow(table.Header, raw)

		key := rowKey(table.Header, row)
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		tx, ok := n.parseRow(row)
		if !ok {
			stats.Dropped++
			continue
		}

		if hasType {
			if v, ok := row.Get(domain.ColumnType); ok {
				if t, ok := domain.ParseTxType(v); ok {
					tx.Type = t
					typeCounts[t]++
				}
			}
		}
		txs = append(txs, tx)
	}

	mode, haveMode := typeMode(typeCounts)
	for i := range txs {
		if txs[i].Type != "" {
			continue
		}
		if haveMode {
			txs[i].Type = mode
			stats.TypeFilled++
		} else {
			txs[i].Type = domain.InferTxType(txs[i].Amount)
			stats.TypeInferred++
		}
	}

	stats.Retained = len(txs)
	return &NormalizeResult{
		Transactions:     txs,
		Stats:            stats,
		HasTransactionID: table.Has(domain.ColumnTransactionID),
	}, nil
}

func (n *Normalizer) parseRow(row domain.RawRow) (domain.Transaction, bool) {
	var tx domain.Transaction

	dateStr, ok := row.Get(domain.ColumnDate)
	if !ok {
		return tx, false
	}
	date, err := parseDate(dateStr, n.layouts)
	if err != nil {
		return tx, false
	}

	amountStr, ok := row.Get(domain.ColumnAmount)
	if !ok {
		return tx, false
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return tx, false
	}

	tx.Date = date
	tx.Amount = amount
	tx.Description = UnknownDescription

	if v, ok := row.Get(domain.ColumnTransactionID); ok {
		id := v
		tx.TransactionID = &id
	}
	if v, ok := row.Get(domain.ColumnCustomerID); ok {
		tx.CustomerID, _ = parseCustomerID(v)
	}
	if v, ok := row.Get(domain.ColumnDescription); ok {
		tx.Description = v
	}
	if v, ok := row.Get(domain.ColumnMerchant); ok {
		tx.Merchant = v
	}
	return tx, true
}
