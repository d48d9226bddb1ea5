package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// SummaryRepository is the warehouse sink for processed runs.
// This interface enables mocking and testing of the export.
type SummaryRepository interface {
	EnsureTables(ctx context.Context) error
	ExportTransactions(ctx context.Context, rows []*TransactionRow) error
	ExportSummary(ctx context.Context, groups []*CategoryTotalRow, periods []*PeriodRow) error
	GroupTotals(ctx context.Context, runID string) ([]*CategoryTotalRow, error)
	Close() error
}

// Exporter is the concrete implementation of SummaryRepository that writes to
// BigQuery. It holds a shared client to avoid creating a new connection for
// each operation.
type Exporter struct {
	client  *bigquery.Client
	dataset string
	tables  TableNames
}

// NewExporter creates an Exporter for projectID with a shared BigQuery client.
func NewExporter(ctx context.Context, projectID, datasetID string, tables TableNames, opts ...option.ClientOption) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}
	return &Exporter{
		client:  client,
		dataset: datasetID,
		tables:  tables,
	}, nil
}

// Close closes the BigQuery client connection.
func (e *Exporter) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// EnsureTables delegates to EnsureTablesWithClient with the shared client.
func (e *Exporter) EnsureTables(ctx context.Context) error {
	return EnsureTablesWithClient(ctx, e.client, e.dataset, e.tables)
}

// ExportTransactions inserts the transaction rows of one run.
func (e *Exporter) ExportTransactions(ctx context.Context, rows []*TransactionRow) error {
	return InsertRowsWithClient(ctx, e.client, e.dataset, e.tables.Transactions, rows, len(rows))
}

// ExportSummary inserts the keyed totals and the period buckets of one run.
func (e *Exporter) ExportSummary(ctx context.Context, groups []*CategoryTotalRow, periods []*PeriodRow) error {
	if err := InsertRowsWithClient(ctx, e.client, e.dataset, e.tables.GroupTotals, groups, len(groups)); err != nil {
		return fmt.Errorf("ExportSummary: %w", err)
	}
	if err := InsertRowsWithClient(ctx, e.client, e.dataset, e.tables.Periods, periods, len(periods)); err != nil {
		return fmt.Errorf("ExportSummary: %w", err)
	}
	return nil
}

// GroupTotals delegates to QueryGroupTotalsWithClient with the shared client.
func (e *Exporter) GroupTotals(ctx context.Context, runID string) ([]*CategoryTotalRow, error) {
	return QueryGroupTotalsWithClient(ctx, e.client, e.dataset, e.tables.GroupTotals, runID)
}
