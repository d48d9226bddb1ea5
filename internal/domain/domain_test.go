package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseTxType(t *testing.T) {
	tests := []struct {
		input  string
		want   TxType
		wantOK bool
	}{
		{"credit", TypeCredit, true},
		{"  DEBIT ", TypeDebit, true},
		{"Transfer", TypeTransfer, true},
		{"refund", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTxType(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTxType(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInferTxType(t *testing.T) {
	tests := []struct {
		amount string
		want   TxType
	}{
		{"50", TypeCredit},
		{"-20", TypeDebit},
		{"0", TypeDebit},
	}

	for _, tt := range tests {
		if got := InferTxType(decimal.RequireFromString(tt.amount)); got != tt.want {
			t.Errorf("InferTxType(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestCheckSchema(t *testing.T) {
	ok := Table{Header: []string{"date", "amount", "type"}}
	if err := CheckSchema(ok); err != nil {
		t.Fatalf("CheckSchema() unexpected error: %v", err)
	}

	err := CheckSchema(Table{Header: []string{"amount", "description"}})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("CheckSchema() error = %v, want ErrSchema", err)
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("CheckSchema() error is %T, want *SchemaError", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != ColumnDate {
		t.Errorf("Missing = %v, want [date]", schemaErr.Missing)
	}
}

func TestRawRowGet(t *testing.T) {
	v := "tesco"
	row := RawRow{"description": &v, "type": nil}

	if got, ok := row.Get("description"); !ok || got != "tesco" {
		t.Errorf("Get(description) = (%q, %v), want (tesco, true)", got, ok)
	}
	if _, ok := row.Get("type"); ok {
		t.Error("Get(type) should report null")
	}
	if _, ok := row.Get("missing"); ok {
		t.Error("Get(missing) should report null")
	}
}

func TestNormalizeColumnName(t *testing.T) {
	if got := NormalizeColumnName("\ufeff Date "); got != "date" {
		t.Errorf("NormalizeColumnName() = %q, want date", got)
	}
}
