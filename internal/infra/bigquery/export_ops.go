package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/avast/retry-go"
	"github.com/dvloznov/finance-summary/internal/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// Insert retry policy.
var (
	insertAttempts uint = 3
	insertDelay         = 5 * time.Second
)

// TableNames are the destination tables inside the dataset.
type TableNames struct {
	Transactions string
	GroupTotals  string
	Periods      string
}

// EnsureTablesWithClient creates the dataset and any missing table, using a
// schema inferred from the row types. Existing tables are left unchanged.
func EnsureTablesWithClient(ctx context.Context, client *bigquery.Client, datasetID string, tables TableNames) error {
	log := logger.FromContext(ctx)
	ds := client.Dataset(datasetID)

	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: dataset %s metadata: %w", datasetID, err)
		}
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil {
			return fmt.Errorf("EnsureTables: creating dataset %s: %w", datasetID, err)
		}
		log.Info().Str("dataset", datasetID).Msg("Created dataset")
	}

	for _, tbl := range []struct {
		name string
		row  interface{}
	}{
		{tables.Transactions, TransactionRow{}},
		{tables.GroupTotals, CategoryTotalRow{}},
		{tables.Periods, PeriodRow{}},
	} {
		schema, err := bigquery.InferSchema(tbl.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: inferring schema for %s: %w", tbl.name, err)
		}

		t := ds.Table(tbl.name)
		if _, err := t.Metadata(ctx); err == nil {
			continue
		} else if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: table %s metadata: %w", tbl.name, err)
		}

		if err := t.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
			return fmt.Errorf("EnsureTables: creating table %s: %w", tbl.name, err)
		}
		log.Info().Str("dataset", datasetID).Str("table", tbl.name).Msg("Created table")
	}
	return nil
}

// InsertRowsWithClient streams rows into datasetID.tableID, retrying rate
// limits and server errors. rows must be a slice of row struct pointers.
func InsertRowsWithClient(ctx context.Context, client *bigquery.Client, datasetID, tableID string, rows interface{}, n int) error {
	if n == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	inserter := client.Dataset(datasetID).Table(tableID).Inserter()
	err := retry.Do(
		func() error {
			return inserter.Put(ctx, rows)
		},
		retry.RetryIf(func(err error) bool {
			if isRetryable(err) {
				log.Warn().Err(err).Str("table", tableID).Msg("Insert rejected, will retry")
				return true
			}
			return false
		}),
		retry.Context(ctx),
		retry.Attempts(insertAttempts),
		retry.Delay(insertDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("InsertRows: %s.%s: %w", datasetID, tableID, err)
	}

	log.Info().Str("table", tableID).Int("rows", n).Msg("Inserted rows")
	return nil
}

// QueryGroupTotalsWithClient reads back the keyed totals stored for one run.
func QueryGroupTotalsWithClient(ctx context.Context, client *bigquery.Client, datasetID, tableID, runID string) ([]*CategoryTotalRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
		  run_id,
		  dimension,
		  group_key,
		  total,
		  tx_count,
		  created_ts
		FROM %s.%s
		WHERE run_id = @run_id
		ORDER BY dimension, total DESC
	`, datasetID, tableID))
	q.Parameters = []bigquery.QueryParameter{{Name: "run_id", Value: runID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryGroupTotals: query read: %w", err)
	}

	var rows []*CategoryTotalRow
	for {
		var r CategoryTotalRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryGroupTotals: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// isRetryable reports whether err is a rate limit or server-side failure.
// Row-level insert errors are never retried.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}
