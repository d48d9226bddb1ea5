package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-summary/internal/pipeline"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// numericScale is the number of fractional digits a BigQuery NUMERIC holds.
const numericScale = 9

func toNumeric(d decimal.Decimal) *big.Rat {
	return d.Round(numericScale).Rat()
}

// ToTransactionRows maps a processed run to warehouse rows. Transactions
// without a source id get a generated one.
func ToTransactionRows(res *pipeline.Result, now time.Time) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(res.Transactions))
	for _, tx := range res.Transactions {
		id := uuid.NewString()
		if tx.TransactionID != nil {
			id = *tx.TransactionID
		}

		customer := bigquery.NullInt64{}
		if tx.CustomerID != nil {
			customer = bigquery.NullInt64{Int64: *tx.CustomerID, Valid: true}
		}

		rows = append(rows, &TransactionRow{
			RunID:                 res.RunID,
			TransactionID:         id,
			TransactionDate:       tx.Date,
			Amount:                toNumeric(tx.Amount),
			CustomerID:            customer,
			Direction:             string(tx.Type),
			RawDescription:        tx.Description,
			NormalizedDescription: pipeline.NormalizeDescription(tx.Description),
			MerchantName:          tx.Merchant,
			CategoryName:          tx.Category,
			SourceURI:             res.Source,
			CreatedTS:             now,
		})
	}
	return rows
}

// ToSummaryRows maps the keyed totals and period buckets of a summary.
func ToSummaryRows(runID string, s *pipeline.Summary, now time.Time) ([]*CategoryTotalRow, []*PeriodRow) {
	var groups []*CategoryTotalRow
	appendGroups := func(dimension string, totals []pipeline.GroupTotal) {
		for _, g := range totals {
			groups = append(groups, &CategoryTotalRow{
				RunID:     runID,
				Dimension: dimension,
				GroupKey:  g.Key,
				Total:     toNumeric(g.Total),
				TxCount:   int64(g.Count),
				CreatedTS: now,
			})
		}
	}
	appendGroups(DimensionCategory, s.ByCategory)
	appendGroups(DimensionMerchant, s.ByMerchant)

	var periods []*PeriodRow
	appendPeriods := func(granularity string, buckets []pipeline.PeriodSummary) {
		for _, p := range buckets {
			periods = append(periods, &PeriodRow{
				RunID:       runID,
				Granularity: granularity,
				Period:      p.Period,
				Income:      toNumeric(p.Income),
				Expense:     toNumeric(p.Expense),
				Net:         toNumeric(p.Net),
				CreatedTS:   now,
			})
		}
	}
	appendPeriods(GranularityMonth, s.Monthly)
	appendPeriods(GranularityYear, s.Yearly)

	return groups, periods
}
