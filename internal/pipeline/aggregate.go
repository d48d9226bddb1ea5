package pipeline

import (
	"fmt"
	"sort"

	"github.com/dvloznov/finance-summary/internal/domain"
	"github.com/shopspring/decimal"
)

// roundPlaces is the precision of rounded summaries.
const roundPlaces = 2

// ByCategory sums amounts per category, largest total first.
func ByCategory(txs []domain.Transaction) []GroupTotal {
	return groupBy(txs, func(tx domain.Transaction) string { return tx.Category })
}

// ByMerchant sums amounts per merchant, largest total first, truncated to n rows.
func ByMerchant(txs []domain.Transaction, n int) []GroupTotal {
	if n <= 0 {
		n = DefaultTopMerchants
	}
	rows := groupBy(txs, func(tx domain.Transaction) string { return tx.Merchant })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func groupBy(txs []domain.Transaction, key func(domain.Transaction) string) []GroupTotal {
	index := make(map[string]int)
	var rows []GroupTotal
	for _, tx := range txs {
		k := key(tx)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, GroupTotal{Key: k, Total: decimal.Zero})
		}
		rows[i].Total = rows[i].Total.Add(tx.Amount)
		rows[i].Count++
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Total.GreaterThan(rows[b].Total)
	})
	return rows
}

// Monthly buckets income and expense by calendar month, oldest first.
func Monthly(txs []domain.Transaction, conv SignConvention) []PeriodSummary {
	return periods(txs, conv, func(tx domain.Transaction) string {
		return fmt.Sprintf("%04d-%02d", tx.Date.Year, int(tx.Date.Month))
	})
}

// Yearly buckets income and expense by calendar year, oldest first.
func Yearly(txs []domain.Transaction, conv SignConvention) []PeriodSummary {
	return periods(txs, conv, func(tx domain.Transaction) string {
		return fmt.Sprintf("%04d", tx.Date.Year)
	})
}

func periods(txs []domain.Transaction, conv SignConvention, bucket func(domain.Transaction) string) []PeriodSummary {
	index := make(map[string]int)
	var rows []PeriodSummary
	for _, tx := range txs {
		k := bucket(tx)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, PeriodSummary{Period: k, Income: decimal.Zero, Expense: decimal.Zero})
		}
		switch {
		case tx.Type == domain.TypeCredit:
			rows[i].Income = rows[i].Income.Add(tx.Amount)
		case tx.Type.IsOutflow():
			rows[i].Expense = rows[i].Expense.Add(tx.Amount)
		}
	}
	for i := range rows {
		rows[i].Income = rows[i].Income.Round(roundPlaces)
		rows[i].Expense = rows[i].Expense.Round(roundPlaces)
		rows[i].Net = conv.Net(rows[i].Income, rows[i].Expense)
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].Period < rows[b].Period })
	return rows
}

// ByCustomer summarizes each customer, lowest id first. Transactions without a
// customer are excluded. When countByID is set, only rows carrying a
// transaction id are counted.
func ByCustomer(txs []domain.Transaction, conv SignConvention, countByID bool) []CustomerSummary {
	index := make(map[int64]int)
	var rows []CustomerSummary
	for _, tx := range txs {
		if tx.CustomerID == nil {
			continue
		}
		id := *tx.CustomerID
		i, ok := index[id]
		if !ok {
			i = len(rows)
			index[id] = i
			rows = append(rows, CustomerSummary{CustomerID: id, TotalCredit: decimal.Zero, TotalDebit: decimal.Zero})
		}
		if !countByID || tx.TransactionID != nil {
			rows[i].Transactions++
		}
		switch {
		case tx.Type == domain.TypeCredit:
			rows[i].TotalCredit = rows[i].TotalCredit.Add(tx.Amount)
		case tx.Type.IsOutflow():
			rows[i].TotalDebit = rows[i].TotalDebit.Add(tx.Amount)
		}
	}
	for i := range rows {
		rows[i].TotalCredit = rows[i].TotalCredit.Round(roundPlaces)
		rows[i].TotalDebit = rows[i].TotalDebit.Round(roundPlaces)
		rows[i].NetBalance = conv.Net(rows[i].TotalCredit, rows[i].TotalDebit)
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].CustomerID < rows[b].CustomerID })
	return rows
}

// TopByCredit returns the n customers with the highest credit total.
func TopByCredit(rows []CustomerSummary, n int) []CustomerSummary {
	return topN(rows, n, func(a, b CustomerSummary) bool {
		return a.TotalCredit.GreaterThan(b.TotalCredit)
	})
}

// TopByDebit returns the n customers with the largest outflow by magnitude.
func TopByDebit(rows []CustomerSummary, n int) []CustomerSummary {
	return topN(rows, n, func(a, b CustomerSummary) bool {
		return a.TotalDebit.Abs().GreaterThan(b.TotalDebit.Abs())
	})
}

func topN(rows []CustomerSummary, n int, less func(a, b CustomerSummary) bool) []CustomerSummary {
	if n <= 0 {
		n = DefaultTopCustomers
	}
	out := append([]CustomerSummary(nil), rows...)
	sort.SliceStable(out, func(a, b int) bool { return less(out[a], out[b]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TypeCounts counts transactions per type, in credit, debit, transfer order.
// Types with no transactions are omitted.
func TypeCounts(txs []domain.Transaction) []TypeCount {
	counts := make(map[domain.TxType]int, len(domain.TxTypes))
	for _, tx := range txs {
		counts[tx.Type]++
	}
	var out []TypeCount
	for _, t := range domain.TxTypes {
		if c := counts[t]; c > 0 {
			out = append(out, TypeCount{Type: t, Count: c})
		}
	}
	return out
}

// ComputeTotals returns the exact global sums.
func ComputeTotals(txs []domain.Transaction, conv SignConvention) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero, Transfers: decimal.Zero, Count: len(txs)}
	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeCredit:
			t.Income = t.Income.Add(tx.Amount)
		case domain.TypeDebit:
			t.Expenses = t.Expenses.Add(tx.Amount)
		case domain.TypeTransfer:
			t.Transfers = t.Transfers.Add(tx.Amount)
		}
	}
	t.Net = conv.Net(t.Income, t.Expenses)
	return t
}
