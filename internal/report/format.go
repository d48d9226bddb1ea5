// Package report renders summaries for people: aligned console tables with
// currency formatting, or JSON for other tools.
package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSymbol prefixes formatted amounts.
const DefaultSymbol = "$"

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Formatter renders amounts with thousands separators.
type Formatter struct {
	symbol  string
	group   string
	point   string
	printer *message.Printer
}

// NewFormatter creates a Formatter using symbol and the separators of tag.
// An empty symbol selects DefaultSymbol.
func NewFormatter(symbol string, tag language.Tag) *Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	p := message.NewPrinter(tag)
	f := &Formatter{symbol: symbol, group: ",", point: ".", printer: p}

	if g, ok := between(p.Sprintf("%d", 1000), "1", "000"); ok {
		f.group = g
	}
	if pt, ok := between(p.Sprintf("%.1f", 0.5), "0", "5"); ok && pt != "" {
		f.point = pt
	}
	return f
}

// Currency formats d as e.g. "-$1,234.50". Digits come from the exact
// decimal, so large totals are not rounded through float64.
func (f *Formatter) Currency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	digits := d.Abs().StringFixed(2)
	whole, frac := digits[:len(digits)-3], digits[len(digits)-2:]
	return sign + f.symbol + groupDigits(whole, f.group) + f.point + frac
}

// Count formats n with thousands separators.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Compact formats d as 1.2K or 3.4M for axis labels and narrow columns.
func Compact(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(million):
		return sign + abs.Div(million).StringFixed(1) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return sign + abs.Div(thousand).StringFixed(1) + "K"
	default:
		if s := abs.StringFixed(0); s != "0" {
			return sign + s
		}
		return "0"
	}
}

func groupDigits(s, sep string) string {
	if sep == "" || len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// between returns what s holds between prefix and suffix.
func between(s, prefix, suffix string) (string, bool) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return "", false
	}
	return strings.CutSuffix(rest, suffix)
}
