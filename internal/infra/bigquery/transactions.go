package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// TransactionRow is one cleaned, classified transaction.
type TransactionRow struct {
	RunID         string `bigquery:"run_id"`         // REQUIRED
	TransactionID string `bigquery:"transaction_id"` // REQUIRED, generated when the source has none

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC

	CustomerID bigquery.NullInt64 `bigquery:"customer_id"` // NULLABLE

	Direction string `bigquery:"direction"` // REQUIRED: credit, debit or transfer

	RawDescription        string `bigquery:"raw_description"`        // REQUIRED
	NormalizedDescription string `bigquery:"normalized_description"` // REQUIRED

	MerchantName string `bigquery:"merchant_name"` // REQUIRED
	CategoryName string `bigquery:"category_name"` // REQUIRED

	SourceURI string    `bigquery:"source_uri"` // REQUIRED
	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}
