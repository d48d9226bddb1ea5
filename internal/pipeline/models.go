package pipeline

import (
	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/shopspring/decimal"
)

// NormalizeStats are the counters reported by the Normalizer.
type NormalizeStats struct {
	Loaded       int `json:"rows_loaded"`
	Duplicates   int `json:"duplicates_removed"`
	Dropped      int `json:"rows_dropped"`
	Retained     int `json:"rows_retained"`
	TypeFilled   int `json:"type_filled"`
	TypeInferred int `json:"type_inferred"`
}

// NormalizeResult is the output of Normalizer.Normalize.
type NormalizeResult struct {
	Transactions []domain.Transaction
	Stats        NormalizeStats
	// HasTransactionID reports whether the source schema carried transaction_id.
	HasTransactionID bool
}

// Result is one processed source: normalized and classified transactions.
type Result struct {
	RunID            string
	Source           string
	Transactions     []domain.Transaction
	Stats            NormalizeStats
	HasTransactionID bool
	// Unclassified counts transactions that fell back to the default category.
	Unclassified int
}

// SignConvention tells the aggregator how debits are stored.
type SignConvention string

const (
	// SignSigned means debits are stored as non-positive amounts: Net = Income + Expense.
	SignSigned SignConvention = "signed"
	// SignAbsolute means debits are stored as positive amounts: Net = Income - Expense.
	SignAbsolute SignConvention = "absolute"
)

// Net combines an income and an expense measure under the convention.
func (c SignConvention) Net(income, expense decimal.Decimal) decimal.Decimal {
	if c == SignAbsolute {
		return income.Sub(expense)
	}
	return income.Add(expense)
}

// GroupTotal is one row of a keyed sum (category, merchant).
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// PeriodSummary is one month or year bucket. Income and Expense are rounded to 2 dp.
type PeriodSummary struct {
	Period  string          `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CustomerSummary is one customer row. Credit and debit totals are rounded to 2 dp.
type CustomerSummary struct {
	CustomerID   int64           `json:"customer_id"`
	Transactions int             `json:"transactions"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	NetBalance   decimal.Decimal `json:"net_balance"`
}

// TypeCount is the number of transactions of one type.
type TypeCount struct {
	Type  domain.TxType `json:"type"`
	Count int           `json:"count"`
}

// Totals are the global, unrounded sums.
type Totals struct {
	Income    decimal.Decimal `json:"total_income"`
	Expenses  decimal.Decimal `json:"total_expenses"`
	Transfers decimal.Decimal `json:"total_transfers"`
	Net       decimal.Decimal `json:"net_balance"`
	Count     int             `json:"transactions"`
}
