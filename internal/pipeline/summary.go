package pipeline

import (
	"github.com/dvloznov/finance-summary/internal/domain"
)

// SummaryOptions parameterizes Summarize. Zero values select the defaults.
type SummaryOptions struct {
	TopMerchants int
	TopCustomers int
	Sign         SignConvention
	// CountByTransactionID makes customer counts use non-null transaction ids.
	CountByTransactionID bool
}

// Summary holds every named summary table for one transaction set.
type Summary struct {
	Totals          Totals            `json:"totals"`
	Monthly         []PeriodSummary   `json:"monthly"`
	Yearly          []PeriodSummary   `json:"yearly"`
	ByCategory      []GroupTotal      `json:"by_category"`
	ByMerchant      []GroupTotal      `json:"by_merchant"`
	CustomerSummary []CustomerSummary `json:"customer_summary"`
	TopCredit       []CustomerSummary `json:"top_credit"`
	TopDebit        []CustomerSummary `json:"top_debit"`
	TypeCounts      []TypeCount       `json:"type_counts"`
}

// Summarize composes the aggregations over classified transactions.
func Summarize(txs []domain.Transaction, opts SummaryOptions) *Summary {
	if opts.TopMerchants <= 0 {
		opts.TopMerchants = DefaultTopMerchants
	}
	if opts.TopCustomers <= 0 {
		opts.TopCustomers = DefaultTopCustomers
	}
	if opts.Sign == "" {
		opts.Sign = SignSigned
	}

	customers := ByCustomer(txs, opts.Sign, opts.CountByTransactionID)
	return &Summary{
		Totals:          ComputeTotals(txs, opts.Sign),
		Monthly:         Monthly(txs, opts.Sign),
		Yearly:          Yearly(txs, opts.Sign),
		ByCategory:      ByCategory(txs),
		ByMerchant:      ByMerchant(txs, opts.TopMerchants),
		CustomerSummary: customers,
		TopCredit:       TopByCredit(customers, opts.TopCustomers),
		TopDebit:        TopByDebit(customers, opts.TopCustomers),
		TypeCounts:      TypeCounts(txs),
	}
}
