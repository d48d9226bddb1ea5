package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-summary/internal/domain"
	infraBQ "github.com/dvloznov/finance-summary/internal/infra/bigquery"
	"github.com/dvloznov/finance-summary/internal/pipeline"
)

// MockSummaryRepository is a mock implementation of SummaryRepository for testing.
type MockSummaryRepository struct {
	EnsureTablesFunc       func(ctx context.Context) error
	ExportTransactionsFunc func(ctx context.Context, rows []*infraBQ.TransactionRow) error
	GroupTotalsFunc        func(ctx context.Context, runID string) ([]*infraBQ.CategoryTotalRow, error)

	mu         sync.Mutex
	closed     int
	ensured    bool
	txRows     int
	groupRows  int
	periodRows int
}

func (m *MockSummaryRepository) EnsureTables(ctx context.Context) error {
	m.ensured = true
	if m.EnsureTablesFunc != nil {
		return m.EnsureTablesFunc(ctx)
	}
	return nil
}

func (m *MockSummaryRepository) ExportTransactions(ctx context.Context, rows []*infraBQ.TransactionRow) error {
	m.mu.Lock()
	m.txRows = len(rows)
	m.mu.Unlock()
	if m.ExportTransactionsFunc != nil {
		return m.ExportTransactionsFunc(ctx, rows)
	}
	return nil
}

func (m *MockSummaryRepository) ExportSummary(ctx context.Context, groups []*infraBQ.CategoryTotalRow, periods []*infraBQ.PeriodRow) error {
	m.mu.Lock()
	m.groupRows, m.periodRows = len(groups), len(periods)
	m.mu.Unlock()
	return nil
}

func (m *MockSummaryRepository) GroupTotals(ctx context.Context, runID string) ([]*infraBQ.CategoryTotalRow, error) {
	if m.GroupTotalsFunc != nil {
		return m.GroupTotalsFunc(ctx, runID)
	}
	return nil, nil
}

func (m *MockSummaryRepository) Close() error {
	m.closed++
	return nil
}

// MockStorageService is a mock implementation of StorageService for testing.
type MockStorageService struct {
	mu       sync.Mutex
	uploaded map[string][]byte
}

func (m *MockStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return nil, domain.ErrSourceNotFound
}

func (m *MockStorageService) UploadBytes(ctx context.Context, gcsURI string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[gcsURI] = data
	return nil
}

func (m *MockStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return nil
}

func (m *MockStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return uri
}

func exportFixture() (*pipeline.Result, *pipeline.Summary) {
	txs := []domain.Transaction{
		{Date: civil.Date{Year: 2024, Month: time.March, Day: 1}, Amount: decimal.NewFromInt(100),
			Type: domain.TypeCredit, Description: "PAYROLL", Merchant: "Payroll", Category: "Salary"},
	}
	res := &pipeline.Result{RunID: "run-1", Source: "data.csv", Transactions: txs}
	return res, pipeline.Summarize(txs, pipeline.SummaryOptions{})
}

func TestExport(t *testing.T) {
	res, summary := exportFixture()
	repo := &MockSummaryRepository{
		GroupTotalsFunc: func(ctx context.Context, runID string) ([]*infraBQ.CategoryTotalRow, error) {
			// one category row and one merchant row
			return make([]*infraBQ.CategoryTotalRow, 2), nil
		},
	}
	store := &MockStorageService{}
	a := &app{log: zerolog.Nop(), store: store}

	opts := exportOptions{ensureTables: true, uploadURI: "gs://b/clean/data_cleaned.csv", verify: true}
	if err := a.export(context.Background(), repo, res, summary, opts); err != nil {
		t.Fatalf("export() error = %v", err)
	}

	if !repo.ensured {
		t.Error("EnsureTables was not called")
	}
	if repo.txRows != 1 || repo.groupRows != 2 || repo.periodRows != 2 {
		t.Errorf("exported rows = %d/%d/%d, want 1/2/2", repo.txRows, repo.groupRows, repo.periodRows)
	}
	if _, ok := store.uploaded[opts.uploadURI]; !ok {
		t.Errorf("cleaned CSV not uploaded to %s", opts.uploadURI)
	}
	if repo.closed != 1 {
		t.Errorf("Close called %d times, want 1", repo.closed)
	}
}

func TestExport_ClosesRepositoryOnFailure(t *testing.T) {
	tests := []struct {
		name string
		repo *MockSummaryRepository
		opts exportOptions
	}{
		{
			name: "ensure tables fails",
			repo: &MockSummaryRepository{EnsureTablesFunc: func(context.Context) error { return errors.New("denied") }},
			opts: exportOptions{ensureTables: true},
		},
		{
			name: "insert fails",
			repo: &MockSummaryRepository{ExportTransactionsFunc: func(context.Context, []*infraBQ.TransactionRow) error {
				return errors.New("quota")
			}},
		},
		{
			name: "verification mismatch",
			repo: &MockSummaryRepository{},
			opts: exportOptions{verify: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, summary := exportFixture()
			a := &app{log: zerolog.Nop(), store: &MockStorageService{}}

			if err := a.export(context.Background(), tt.repo, res, summary, tt.opts); err == nil {
				t.Fatal("export() expected error")
			}
			if tt.repo.closed != 1 {
				t.Errorf("Close called %d times, want 1", tt.repo.closed)
			}
		})
	}
}
