package bigquery

import (
	"math/big"
	"time"
)

// Group dimensions stored in CategoryTotalRow.Dimension.
const (
	DimensionCategory = "category"
	DimensionMerchant = "merchant"
)

// Period granularities stored in PeriodRow.Granularity.
const (
	GranularityMonth = "month"
	GranularityYear  = "year"
)

// CategoryTotalRow is one keyed total of a summary run.
type CategoryTotalRow struct {
	RunID     string    `bigquery:"run_id"`
	Dimension string    `bigquery:"dimension"`
	GroupKey  string    `bigquery:"group_key"`
	Total     *big.Rat  `bigquery:"total"`
	TxCount   int64     `bigquery:"tx_count"`
	CreatedTS time.Time `bigquery:"created_ts"`
}

// PeriodRow is one month or year bucket of a summary run.
type PeriodRow struct {
	RunID       string    `bigquery:"run_id"`
	Granularity string    `bigquery:"granularity"`
	Period      string    `bigquery:"period"`
	Income      *big.Rat  `bigquery:"income"`
	Expense     *big.Rat  `bigquery:"expense"`
	Net         *big.Rat  `bigquery:"net"`
	CreatedTS   time.Time `bigquery:"created_ts"`
}
