package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dvloznov/finance-summary/internal/pipeline"
	"github.com/dvloznov/finance-summary/internal/suggest"
)

// Printer writes human-readable tables.
type Printer struct {
	w io.Writer
	f *Formatter
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, f *Formatter) *Printer {
	return &Printer{w: w, f: f}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}

// Stats prints the normalization counters of a run.
func (p *Printer) Stats(res *pipeline.Result) error {
	tw := p.table("Run " + res.RunID)
	fmt.Fprintf(tw, "Source\t%s\n", res.Source)
	fmt.Fprintf(tw, "Rows loaded\t%s\n", p.f.Count(res.Stats.Loaded))
	fmt.Fprintf(tw, "Duplicates removed\t%s\n", p.f.Count(res.Stats.Duplicates))
	fmt.Fprintf(tw, "Rows dropped\t%s\n", p.f.Count(res.Stats.Dropped))
	fmt.Fprintf(tw, "Rows retained\t%s\n", p.f.Count(res.Stats.Retained))
	fmt.Fprintf(tw, "Types filled / inferred\t%d / %d\n", res.Stats.TypeFilled, res.Stats.TypeInferred)
	fmt.Fprintf(tw, "Unclassified\t%s\n", p.f.Count(res.Unclassified))
	return tw.Flush()
}

// Summary prints every summary table.
func (p *Printer) Summary(s *pipeline.Summary) error {
	sections := []func(*pipeline.Summary) error{
		p.totals,
		func(s *pipeline.Summary) error { return p.groups("Spending by category", s.ByCategory) },
		func(s *pipeline.Summary) error { return p.groups("Top merchants", s.ByMerchant) },
		func(s *pipeline.Summary) error { return p.periods("Monthly trend", s.Monthly) },
		func(s *pipeline.Summary) error { return p.periods("Yearly trend", s.Yearly) },
		func(s *pipeline.Summary) error { return p.customers("Top customers by credit", s.TopCredit) },
		func(s *pipeline.Summary) error { return p.customers("Top customers by debit", s.TopDebit) },
		p.types,
	}
	for _, section := range sections {
		if err := section(s); err != nil {
			return fmt.Errorf("Summary: %w", err)
		}
	}
	return nil
}

// Suggestions prints keyword suggestions.
func (p *Printer) Suggestions(list []suggest.Suggestion) error {
	tw := p.table("Keyword suggestions")
	fmt.Fprintln(tw, "Category\tKeyword\tDescription")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Category, s.Keyword, s.Description)
	}
	return tw.Flush()
}

func (p *Printer) totals(s *pipeline.Summary) error {
	tw := p.table("Totals")
	fmt.Fprintf(tw, "Transactions\t%s\n", p.f.Count(s.Totals.Count))
	fmt.Fprintf(tw, "Income\t%s\n", p.f.Currency(s.Totals.Income))
	fmt.Fprintf(tw, "Expenses\t%s\n", p.f.Currency(s.Totals.Expenses))
	fmt.Fprintf(tw, "Transfers\t%s\n", p.f.Currency(s.Totals.Transfers))
	fmt.Fprintf(tw, "Net balance\t%s\n", p.f.Currency(s.Totals.Net))
	return tw.Flush()
}

func (p *Printer) groups(title string, rows []pipeline.GroupTotal) error {
	tw := p.table(title)
	fmt.Fprintln(tw, "Name\tTotal\tCompact\tCount")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.Key, p.f.Currency(r.Total), Compact(r.Total), r.Count)
	}
	return tw.Flush()
}

func (p *Printer) periods(title string, rows []pipeline.PeriodSummary) error {
	tw := p.table(title)
	fmt.Fprintln(tw, "Period\tIncome\tExpense\tNet")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Period, p.f.Currency(r.Income), p.f.Currency(r.Expense), p.f.Currency(r.Net))
	}
	return tw.Flush()
}

func (p *Printer) customers(title string, rows []pipeline.CustomerSummary) error {
	tw := p.table(title)
	fmt.Fprintln(tw, "Customer\tTransactions\tCredit\tDebit\tNet")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", strconv.FormatInt(r.CustomerID, 10), r.Transactions,
			p.f.Currency(r.TotalCredit), p.f.Currency(r.TotalDebit), p.f.Currency(r.NetBalance))
	}
	return tw.Flush()
}

func (p *Printer) types(s *pipeline.Summary) error {
	tw := p.table("Transaction types")
	total := 0
	for _, c := range s.TypeCounts {
		total += c.Count
	}
	fmt.Fprintln(tw, "Type\tCount\tShare")
	for _, c := range s.TypeCounts {
		share := 0.0
		if total > 0 {
			share = 100 * float64(c.Count) / float64(total)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", c.Type, c.Count, share)
	}
	return tw.Flush()
}

func (p *Printer) table(title string) *tabwriter.Writer {
	fmt.Fprintf(p.w, "\n== %s ==\n", title)
	return tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
}
