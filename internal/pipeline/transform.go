package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/shopspring/decimal"
)

// trimRow returns a copy of row restricted to header with every value trimmed.
// Empty values and columns missing from a ragged row become null.
func trimRow(header []string, row domain.RawRow) domain.RawRow {
	out := make(domain.RawRow, len(header))
	for _, col := range header {
		v, ok := row.Get(col)
		if !ok {
			out[col] = nil
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			out[col] = nil
			continue
		}
		out[col] = &v
	}
	return out
}

// rowKey identifies a trimmed row by every column of header, nulls included.
func rowKey(header []string, row domain.RawRow) string {
	var b strings.Builder
	for _, col := range header {
		if v, ok := row.Get(col); ok {
			b.WriteByte(1)
			b.WriteString(v)
		} else {
			b.WriteByte(0)
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// parseDate tries each layout in order and keeps the calendar date only.
func parseDate(s string, layouts []string) (civil.Date, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("parseDate: unrecognized date %q", s)
}

// parseAmount parses a plain decimal amount. Thousands separators and currency symbols are rejected.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parseAmount: invalid amount %q: %w", s, err)
	}
	return d, nil
}

// parseCustomerID accepts integers and integral decimals such as "12.0".
// Values outside the int64 range are rejected.
func parseCustomerID(s string) (*int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return nil, false
	}
	n := d.IntPart()
	if !decimal.NewFromInt(n).Equal(d) {
		return nil, false
	}
	return &n, true
}

// typeMode returns the most frequent type. Ties go to the lexicographically lowest label.
func typeMode(counts map[domain.TxType]int) (domain.TxType, bool) {
	var (
		mode domain.TxType
		best int
	)
	for _, t := range domain.TxTypes {
		c := counts[t]
		if c == 0 {
			continue
		}
		if c > best || (c == best && t < mode) {
			mode, best = t, c
		}
	}
	return mode, best > 0
}
