package pipeline

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/dvloznov/finance-summary/internal/domain"
)

func TestNormalize_InfersTypeFromSign(t *testing.T) {
	table := mustTable(t, "date,amount,description\n2023-01-01,50,refund\n2023-01-02,-20,coffee\n2023-01-03,0,fee waiver\n")

	res, err := NewNormalizer().Normalize(table)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []domain.TxType{domain.TypeCredit, domain.TypeDebit, domain.TypeDebit}
	for i, tx := range res.Transactions {
		if tx.Type != want[i] {
			t.Errorf("row %d type = %q, want %q", i, tx.Type, want[i])
		}
	}
	if res.Stats.TypeInferred != 3 || res.Stats.TypeFilled != 0 {
		t.Errorf("stats = %+v, want 3 inferred and 0 filled", res.Stats)
	}
}

func TestNormalize_FillsTypeWithMode(t *testing.T) {
	tests := []struct {
		name         string
		csv          string
		want         []domain.TxType
		wantFilled   int
		wantInferred int
	}{
		{
			name:       "mode of observed values",
			csv:        "date,amount,type\n2023-01-01,10,credit\n2023-01-02,-5,debit\n2023-01-03,-7,DEBIT\n2023-01-04,3,\n",
			want:       []domain.TxType{domain.TypeCredit, domain.TypeDebit, domain.TypeDebit, domain.TypeDebit},
			wantFilled: 1,
		},
		{
			name:       "tie goes to the lowest label",
			csv:        "date,amount,type\n2023-01-01,-10,transfer\n2023-01-02,-5,debit\n2023-01-03,-7,\n",
			want:       []domain.TxType{domain.TypeTransfer, domain.TypeDebit, domain.TypeDebit},
			wantFilled: 1,
		},
		{
			name:       "unknown labels count as missing",
			csv:        "date,amount,type\n2023-01-01,10,credit\n2023-01-02,-5,refund\n",
			want:       []domain.TxType{domain.TypeCredit, domain.TypeCredit},
			wantFilled: 1,
		},
		{
			name:         "no recognised values falls back to sign",
			csv:          "date,amount,type\n2023-01-01,10,\n2023-01-02,-5,other\n",
			want:         []domain.TxType{domain.TypeCredit, domain.TypeDebit},
			wantInferred: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewNormalizer().Normalize(mustTable(t, tt.csv))
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			var got []domain.TxType
			for _, tx := range res.Transactions {
				got = append(got, tx.Type)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("types = %v, want %v", got, tt.want)
			}
			if res.Stats.TypeFilled != tt.wantFilled || res.Stats.TypeInferred != tt.wantInferred {
				t.Errorf("filled/inferred = %d/%d, want %d/%d",
					res.Stats.TypeFilled, res.Stats.TypeInferred, tt.wantFilled, tt.wantInferred)
			}
		})
	}
}

func TestNormalize_RemovesDuplicates(t *testing.T) {
	tests := []struct {
		name           string
		csv            string
		wantRetained   int
		wantDuplicates int
	}{
		{
			name:           "identical rows",
			csv:            "date,amount,type,description\n2023-01-01,-5,debit,Tesco\n2023-01-01,-5,debit,Tesco\n",
			wantRetained:   1,
			wantDuplicates: 1,
		},
		{
			name:           "identical after trimming",
			csv:            "date,amount,description\n2023-01-01,-5,Tesco\n 2023-01-01 , -5 ,Tesco  \n",
			wantRetained:   1,
			wantDuplicates: 1,
		},
		{
			name:           "rows differing in an extra column are kept",
			csv:            "date,amount,note\n2023-01-01,-5,a\n2023-01-01,-5,b\n",
			wantRetained:   2,
			wantDuplicates: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewNormalizer().Normalize(mustTable(t, tt.csv))
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if res.Stats.Retained != tt.wantRetained || res.Stats.Duplicates != tt.wantDuplicates {
				t.Errorf("retained/duplicates = %d/%d, want %d/%d",
					res.Stats.Retained, res.Stats.Duplicates, tt.wantRetained, tt.wantDuplicates)
			}
		})
	}
}

func TestNormalize_SchemaError(t *testing.T) {
	table := mustTable(t, "amount,description\n10,salary\n")

	res, err := NewNormalizer().Normalize(table)
	if res != nil {
		t.Errorf("Normalize() result = %+v, want nil", res)
	}
	if !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("Normalize() error = %v, want ErrSchema", err)
	}
	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Normalize() error = %T, want *SchemaError", err)
	}
	if !reflect.DeepEqual(schemaErr.Missing, []string{domain.ColumnDate}) {
		t.Errorf("Missing = %v, want [date]", schemaErr.Missing)
	}
}

func TestNormalize_DropsUnparseableRows(t *testing.T) {
	csv := "date,amount\n" +
		"2023-01-01,10\n" +
		"not-a-date,10\n" +
		"2023-01-02,abc\n" +
		"2023-01-03,\n" +
		",5\n" +
		"2023-01-04,\"1,000\"\n"

	res, err := NewNormalizer().Normalize(mustTable(t, csv))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if res.Stats.Loaded != 6 || res.Stats.Dropped != 5 || res.Stats.Retained != 1 {
		t.Errorf("stats = %+v, want loaded 6, dropped 5, retained 1", res.Stats)
	}
}

func TestNormalize_Fields(t *testing.T) {
	csv := "transaction_id,date,amount,customer_id,description,merchant\n" +
		"t1,2023-01-01,10.50,12,  Salary  ,\n" +
		"t2,2023-01-02,-3,12.0,,Corner Shop\n" +
		",2023-01-03,-4,abc,coffee,\n" +
		"t4,2023-01-04,-5,99999999999999999999,tea,\n" +
		"t5,2023-01-05,-6,9223372036854775808,cake,\n" +
		"t6,2023-01-06,-7,-9223372036854775808,bun,\n"

	res, err := NewNormalizer().Normalize(mustTable(t, csv))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !res.HasTransactionID {
		t.Error("HasTransactionID = false, want true")
	}
	txs := res.Transactions
	if len(txs) != 6 {
		t.Fatalf("len(transactions) = %d, want 6", len(txs))
	}

	if txs[0].TransactionID == nil || *txs[0].TransactionID != "t1" {
		t.Errorf("row 0 transaction id = %v, want t1", txs[0].TransactionID)
	}
	if txs[2].TransactionID != nil {
		t.Errorf("row 2 transaction id = %q, want nil", *txs[2].TransactionID)
	}
	assertDecimal(t, "row 0 amount", txs[0].Amount, "10.5")
	if txs[0].Description != "Salary" {
		t.Errorf("row 0 description = %q, want trimmed Salary", txs[0].Description)
	}
	if txs[1].Description != UnknownDescription {
		t.Errorf("row 1 description = %q, want %q", txs[1].Description, UnknownDescription)
	}
	if txs[1].Merchant != "Corner Shop" {
		t.Errorf("row 1 merchant = %q, want Corner Shop", txs[1].Merchant)
	}

	for i, want := range []*int64{ptr(int64(12)), ptr(int64(12)), nil, nil, nil, ptr(int64(math.MinInt64))} {
		got := txs[i].CustomerID
		if (got == nil) != (want == nil) || (got != nil && *got != *want) {
			t.Errorf("row %d customer id = %v, want %v", i, got, want)
		}
	}
}

func TestNormalize_DateLayouts(t *testing.T) {
	want := day(2023, 1, 15)
	inputs := []string{
		"2023-01-15",
		"2023-01-15 10:30:00",
		"2023-01-15T10:30:00Z",
		"2023-01-15T23:30:00-05:00",
		"01/15/2023",
		"1/15/2023",
		"2023/01/15",
		"2023/1/15",
		"2023-1-15",
		"2023-1-15 10:30:00",
		"15-Jan-2023",
		"Jan 15, 2023",
		"20230115",
	}

	n := NewNormalizer()
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := parseDate(in, n.layouts)
			if err != nil {
				t.Fatalf("parseDate(%q) error = %v", in, err)
			}
			if got != want {
				t.Errorf("parseDate(%q) = %v, want %v", in, got, want)
			}
		})
	}
}

func TestNormalize_CustomLayouts(t *testing.T) {
	res, err := NewNormalizer("02/01/2006").Normalize(mustTable(t, "date,amount\n15/01/2023,1\n2023-01-15,2\n"))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if res.Stats.Retained != 1 || res.Transactions[0].Date != day(2023, 1, 15) {
		t.Errorf("transactions = %+v, want only the day-first row", res.Transactions)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	csv := "transaction_id,date,amount,customer_id,type,description\n" +
		"t1,01/05/2023,100.00,1,credit,Salary ACME\n" +
		"t2,2023-01-06,-12.5,1,,TESCO STORE 12\n" +
		"t3,2023-02-01,-40,2,transfer,savings\n" +
		"t4,2023-02-03,-9.99,,debit,\n"

	e := NewEngine(nil, nil, nil)
	first, err := e.Process(t.Context(), mustTable(t, csv))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	var buf strings.Builder
	if err := WriteCleanedCSV(&buf, first.Transactions, first.HasTransactionID); err != nil {
		t.Fatalf("WriteCleanedCSV() error = %v", err)
	}
	second, err := e.Process(t.Context(), mustTable(t, buf.String()))
	if err != nil {
		t.Fatalf("Process() second pass error = %v", err)
	}

	if second.Stats.Dropped != 0 || second.Stats.Duplicates != 0 || second.Stats.TypeFilled != 0 || second.Stats.TypeInferred != 0 {
		t.Errorf("second pass stats = %+v, want no changes", second.Stats)
	}
	if len(second.Transactions) != len(first.Transactions) {
		t.Fatalf("second pass kept %d rows, want %d", len(second.Transactions), len(first.Transactions))
	}
	for i := range first.Transactions {
		if !sameTransaction(first.Transactions[i], second.Transactions[i]) {
			t.Errorf("row %d changed:\n first  %+v\n second %+v", i, first.Transactions[i], second.Transactions[i])
		}
	}
}

func sameTransaction(a, b domain.Transaction) bool {
	if !a.Amount.Equal(b.Amount) {
		return false
	}
	a.Amount = b.Amount
	return reflect.DeepEqual(a, b)
}
