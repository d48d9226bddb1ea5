package domain

import "strings"

// Recognized source columns.
const (
	ColumnDate          = "date"
	ColumnAmount        = "amount"
	ColumnCustomerID    = "customer_id"
	ColumnType          = "type"
	ColumnDescription   = "description"
	ColumnTransactionID = "transaction_id"
	ColumnMerchant      = "merchant"
)

// RequiredColumns must be present in every source schema.
var RequiredColumns = []string{ColumnDate, ColumnAmount}

// RawRow is an untyped input row keyed by normalized column name.
// A nil value means the field is absent (null).
type RawRow map[string]*string

// Get returns the value of column and whether it is non-null.
func (r RawRow) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Table is a parsed tabular source: its header in source order and its rows.
type Table struct {
	Header []string
	Rows   []RawRow
}

// Has reports whether column is part of the source schema.
func (t Table) Has(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// NormalizeColumnName lower-cases and trims a header cell.
func NormalizeColumnName(name string) string {
	return normalizeLabel(strings.TrimPrefix(name, "\ufeff"))
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
