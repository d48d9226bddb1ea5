package pipeline

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/dvloznov/finance-summary/internal/taxonomy"
	"github.com/shopspring/decimal"
)

func mustTable(t *testing.T, csv string) domain.Table {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	return table
}

func mustTaxonomy(t *testing.T, defaultLabel string, cats ...taxonomy.Category) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.New(defaultLabel, cats...)
	if err != nil {
		t.Fatalf("taxonomy.New() error = %v", err)
	}
	return tax
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func day(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func ptr[T any](v T) *T {
	return &v
}

func mkTx(d civil.Date, amount string, typ domain.TxType) domain.Transaction {
	return domain.Transaction{Date: d, Amount: dec(amount), Type: typ, Description: UnknownDescription}
}
